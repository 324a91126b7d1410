package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go-acs-bot/internal/executor"
	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/mocks"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/resolver"
)

func newExecutor(t *testing.T) (*executor.Executor, *mocks.MockDeviceFinder, *mocks.MockGateway) {
	ctrl := gomock.NewController(t)
	finder := mocks.NewMockDeviceFinder(ctrl)
	gw := mocks.NewMockGateway(ctrl)
	return executor.New(finder, gw, zerolog.Nop()), finder, gw
}

func huawei() genieacs.Device {
	return genieacs.Device{
		"_id": "00259E-HG8245H-4857",
		"_deviceId": map[string]interface{}{
			"_Manufacturer": "Huawei Technologies Co., Ltd",
		},
	}
}

func TestSetWiFiPasswordRejectsShortPasswordWithoutRemoteCalls(t *testing.T) {
	ex, _, _ := newExecutor(t)

	_, err := ex.SetWiFiPassword(context.Background(), "SN1", "1234567")

	var vErr *executor.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
}

func TestValidateWiFiPasswordCountsUTF16Units(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"1234567", false},
		{"12345678", true},
		{"ééééééé", false},
		{"🔒🔒🔒🔒", true},
		{"🔒🔒🔒", false},
	}
	for _, tt := range tests {
		err := executor.ValidateWiFiPassword(tt.password)
		if tt.valid {
			assert.NoError(t, err, tt.password)
		} else {
			assert.Error(t, err, tt.password)
		}
	}
}

func TestSetWiFiPassword(t *testing.T) {
	ex, finder, gw := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(huawei(), nil)
	gw.EXPECT().PostTask(gomock.Any(), "00259E-HG8245H-4857", models.Task{
		Name: models.TaskSetParameterValues,
		ParameterValues: []models.ParameterValue{
			{Path: "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.KeyPassphrase", Value: "12345678", Type: "xsd:string"},
			{Path: "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.PreSharedKey.1.PreSharedKey", Value: "12345678", Type: "xsd:string"},
		},
	}).Return(nil)

	_, err := ex.SetWiFiPassword(context.Background(), "SN1", "12345678")
	require.NoError(t, err)
}

func TestRebootPropagatesGatewayError(t *testing.T) {
	ex, finder, gw := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(huawei(), nil)
	gw.EXPECT().PostTask(gomock.Any(), gomock.Any(), models.Task{Name: models.TaskReboot}).
		Return(&genieacs.APIError{StatusCode: 404})

	_, err := ex.Reboot(context.Background(), "SN1")
	assert.Equal(t, 404, genieacs.StatusCode(err))
}

func TestRebootUnknownDevice(t *testing.T) {
	ex, finder, _ := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(nil, resolver.ErrDeviceNotFound)

	_, err := ex.Reboot(context.Background(), "SN1")
	assert.ErrorIs(t, err, resolver.ErrDeviceNotFound)
}

func TestSetWiFiSSIDUsesVendorAlias(t *testing.T) {
	ex, finder, gw := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(huawei(), nil)
	gw.EXPECT().PostTask(gomock.Any(), "00259E-HG8245H-4857", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, task models.Task) error {
			require.Len(t, task.ParameterValues, 2)
			assert.Equal(t, "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID", task.ParameterValues[0].Path)
			assert.Equal(t, "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.X_HW_SSID", task.ParameterValues[1].Path)
			assert.Equal(t, "RumahBudi", task.ParameterValues[1].Value)
			return nil
		})

	_, err := ex.SetWiFiSSID(context.Background(), "SN1", "RumahBudi")
	require.NoError(t, err)
}

func TestSetWiFiSSIDValidation(t *testing.T) {
	ex, _, _ := newExecutor(t)
	var vErr *executor.ValidationError

	_, err := ex.SetWiFiSSID(context.Background(), "SN1", "  ")
	assert.True(t, errors.As(err, &vErr))

	_, err = ex.SetWiFiSSID(context.Background(), "SN1", "this-ssid-is-way-too-long-for-802.11")
	assert.True(t, errors.As(err, &vErr))
}

func TestSetWANCredentials(t *testing.T) {
	ex, finder, gw := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(huawei(), nil)
	gw.EXPECT().PostTask(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, task models.Task) error {
			assert.Equal(t, models.TaskSetParameterValues, task.Name)
			assert.Equal(t, "InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username", task.ParameterValues[0].Path)
			assert.Equal(t, "budi@isp", task.ParameterValues[0].Value)
			assert.Equal(t, "InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Password", task.ParameterValues[1].Path)
			return nil
		})

	_, err := ex.SetWANCredentials(context.Background(), "SN1", "budi@isp", "rahasia")
	require.NoError(t, err)
}

func TestDeviceWithoutIDIsRejected(t *testing.T) {
	ex, finder, _ := newExecutor(t)
	finder.EXPECT().Find(gomock.Any(), "SN1").Return(genieacs.Device{}, nil)

	_, err := ex.Reboot(context.Background(), "SN1")
	var vErr *executor.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSSIDAliasPath(t *testing.T) {
	const prefix = "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1."
	cases := map[string]string{
		"Huawei":    prefix + "X_HW_SSID",
		"ZTE":       prefix + "X_ZTE_SSID",
		"FiberHome": prefix + "X_FH_SSID",
		"CT-COM":    prefix + "X_CT-COM_SSID",
		"TP-Link":   prefix + "X_TP_PreSharedKey",
		"Nokia":     "",
		"":          prefix + "X_TP_PreSharedKey",
	}
	for manufacturer, want := range cases {
		assert.Equal(t, want, executor.SSIDAliasPath(manufacturer), manufacturer)
	}
}
