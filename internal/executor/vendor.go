package executor

import "strings"

const wlanPrefix = "InternetGatewayDevice.LANDevice.1.WLANConfiguration.1."

// vendorSSIDFields maps a manufacturer fragment to the vendor extension that
// mirrors the SSID on that firmware. Checked in order.
var vendorSSIDFields = []struct {
	match []string
	field string
}{
	{[]string{"HUAWEI"}, "X_HW_SSID"},
	{[]string{"ZTE"}, "X_ZTE_SSID"},
	{[]string{"FIBERHOME"}, "X_FH_SSID"},
	{[]string{"CT-COM"}, "X_CT-COM_SSID"},
	{[]string{"ALCATEL", "NOKIA", "CIOT"}, ""},
	{[]string{"TPLINK", "TP-LINK"}, "X_TP_PreSharedKey"},
}

// defaultSSIDField is written for unknown manufacturers
const defaultSSIDField = "X_TP_PreSharedKey"

// SSIDAliasPath returns the full vendor alias path for manufacturer, or "" when
// the vendor only needs the standard SSID field.
func SSIDAliasPath(manufacturer string) string {
	m := strings.ToUpper(manufacturer)
	for _, v := range vendorSSIDFields {
		for _, frag := range v.match {
			if strings.Contains(m, frag) {
				if v.field == "" {
					return ""
				}
				return wlanPrefix + v.field
			}
		}
	}
	return wlanPrefix + defaultSSIDField
}
