package genieacs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDevice(t *testing.T, raw string) Device {
	t.Helper()
	var d Device
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d
}

func TestLookupDegradesToMissing(t *testing.T) {
	d := decodeDevice(t, `{
		"_id": "00259E-HG8245-ABC",
		"VirtualParameters": {
			"RXPower": {"_value": -21.5},
			"pppoeUsername": {"_value": ""},
			"gettemp": {"_value": null},
			"nested": {"_value": {"a": 1}}
		}
	}`)

	v, ok := d.Lookup("VirtualParameters.RXPower._value")
	assert.True(t, ok)
	assert.Equal(t, "-21.5", v)

	for _, path := range []string{
		"VirtualParameters.pppoeUsername._value",
		"VirtualParameters.gettemp._value",
		"VirtualParameters.nested._value",
		"VirtualParameters.missing._value",
		"_id.deeper",
		"",
	} {
		_, ok := d.Lookup(path)
		assert.False(t, ok, path)
	}

	assert.Equal(t, Placeholder, d.Value(Temperature))
	assert.Equal(t, "fallback", d.ValueOr(PPPoEUsername, "fallback"))
}

func TestAccessorPriority(t *testing.T) {
	d := decodeDevice(t, `{
		"_deviceId": {"_SerialNumber": "STRUCT-SN"},
		"VirtualParameters": {"getSerialNumber": {"_value": "FLAT-SN"}}
	}`)
	assert.Equal(t, "FLAT-SN", d.Value(SerialNumber))

	legacy := decodeDevice(t, `{"DeviceID": {"SerialNumber": {"_value": "LEGACY"}}}`)
	assert.Equal(t, "LEGACY", legacy.Value(SerialNumber))
}

func TestDeviceID(t *testing.T) {
	withID := decodeDevice(t, `{"_id": "ABC-Model-123", "_deviceId": {"_OUI": "X", "_ProductClass": "Y", "_SerialNumber": "Z"}}`)
	assert.Equal(t, "ABC-Model-123", withID.ID())

	composed := decodeDevice(t, `{"_deviceId": {"_OUI": "00259E", "_ProductClass": "HG8245H", "_SerialNumber": "4857"}}`)
	assert.Equal(t, "00259E-HG8245H-4857", composed.ID())
	assert.Equal(t, "00259E-HG8245H-4857", composed.DisplayID())

	partial := decodeDevice(t, `{"_deviceId": {"_OUI": "00259E"}}`)
	assert.Equal(t, "", partial.ID())
	assert.Equal(t, "00259E--", partial.DisplayID())
}

func TestIsOnline(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"registered", `{"Events": {"Registered": {"_value": "2024-01-01T00:00:00Z"}}}`, true},
		{"pppoe ip", `{"VirtualParameters": {"pppoeIP": {"_value": "10.0.0.2"}}}`, true},
		{"pppoe ip placeholder", `{"VirtualParameters": {"pppoeIP": {"_value": "-"}}}`, false},
		{"uptime", `{"VirtualParameters": {"getdeviceuptime": {"_value": "3d 4h"}}}`, true},
		{"uptime zero", `{"VirtualParameters": {"getdeviceuptime": {"_value": "0"}}}`, false},
		{"nothing", `{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decodeDevice(t, tc.raw).IsOnline())
		})
	}
}

func TestSearchKey(t *testing.T) {
	d := decodeDevice(t, `{"_deviceId": {"_SerialNumber": "SN1"}, "VirtualParameters": {"pppoeUsername": {"_value": "user1"}}}`)
	assert.Equal(t, "user1", d.SearchKey())

	d = decodeDevice(t, `{"_deviceId": {"_SerialNumber": "SN1"}}`)
	assert.Equal(t, "SN1", d.SearchKey())
}

func TestWLANEnabledState(t *testing.T) {
	on := decodeDevice(t, `{"InternetGatewayDevice": {"LANDevice": {"1": {"WLANConfiguration": {"1": {"Enable": {"_value": true}}}}}}}`)
	assert.True(t, on.WLANEnabledState())

	off := decodeDevice(t, `{"InternetGatewayDevice": {"LANDevice": {"1": {"WLANConfiguration": {"1": {"Enable": {"_value": false}}}}}}}`)
	assert.False(t, off.WLANEnabledState())
	assert.False(t, Device{}.WLANEnabledState())
}

func TestHosts(t *testing.T) {
	d := decodeDevice(t, `{"InternetGatewayDevice": {"LANDevice": {"1": {"Hosts": {"Host": {
		"10": {"HostName": {"_value": "laptop"}, "IPAddress": {"_value": "192.168.1.10"}, "MACAddress": {"_value": "aa:bb"}, "Active": {"_value": true}},
		"2": {"HostName": {"_value": ""}, "IPAddress": {"_value": "192.168.1.2"}, "Active": {"_value": false}},
		"_object": true
	}}}}}}`)

	hosts := d.Hosts()
	require.Len(t, hosts, 2)
	assert.Equal(t, Host{Name: Placeholder, IP: "192.168.1.2", MAC: Placeholder, Active: false}, hosts[0])
	assert.Equal(t, Host{Name: "laptop", IP: "192.168.1.10", MAC: "aa:bb", Active: true}, hosts[1])

	assert.Nil(t, Device{}.Hosts())
}
