package genieacs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Placeholder is rendered for any value the ACS did not report
const Placeholder = "-"

// Device is a device record as returned by the GenieACS NBI. Its shape is not
// controlled by us, so every read goes through Lookup and degrades to "missing".
type Device map[string]interface{}

// Accessor is an ordered list of dotted paths; the first one holding a
// non-empty scalar wins.
type Accessor []string

// Parameter paths, highest priority first
var (
	SerialNumber = Accessor{
		"VirtualParameters.getSerialNumber._value",
		"_deviceId._SerialNumber",
		"DeviceID.SerialNumber._value",
		"InternetGatewayDevice.DeviceInfo.SerialNumber._value",
	}
	StructuredSerial = Accessor{
		"_deviceId._SerialNumber",
		"DeviceID.SerialNumber._value",
	}
	OUI = Accessor{
		"_deviceId._OUI",
		"DeviceID.OUI._value",
	}
	ProductClass = Accessor{
		"_deviceId._ProductClass",
		"DeviceID.ProductClass._value",
	}
	Manufacturer = Accessor{
		"_deviceId._Manufacturer",
		"DeviceID.Manufacturer._value",
		"InternetGatewayDevice.DeviceInfo.Manufacturer._value",
	}
	PPPoEUsername = Accessor{
		"VirtualParameters.pppoeUsername._value",
	}
	PPPoEUsername2 = Accessor{
		"VirtualParameters.pppoeUsername2._value",
	}
	WANPPPUsername = Accessor{
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.Username._value",
	}
	PPPoEIP = Accessor{
		"VirtualParameters.pppoeIP._value",
		"InternetGatewayDevice.WANDevice.1.WANConnectionDevice.1.WANPPPConnection.1.ExternalIPAddress._value",
	}
	RXPower = Accessor{
		"VirtualParameters.RXPower._value",
	}
	Attenuation = Accessor{
		"VirtualParameters.redaman._value",
	}
	Temperature = Accessor{
		"VirtualParameters.gettemp._value",
	}
	DeviceUptime = Accessor{
		"VirtualParameters.getdeviceuptime._value",
	}
	PPPUptime = Accessor{
		"VirtualParameters.getpppuptime._value",
	}
	PONMode = Accessor{
		"VirtualParameters.getponmode._value",
	}
	PONMac = Accessor{
		"VirtualParameters.PonMac._value",
	}
	ConnectedDevices = Accessor{
		"VirtualParameters.activedevices._value",
		"VirtualParameters.userconnected._value",
	}
	Registered = Accessor{
		"Events.Registered._value",
		"_registered",
	}
	WLANSSID = Accessor{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.SSID._value",
		"Device.WiFi.SSID.1.SSID._value",
	}
	WLANEnabled = Accessor{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Enable._value",
		"Device.WiFi.SSID.1.Enable._value",
	}
	WLANChannel = Accessor{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.Channel._value",
		"Device.WiFi.Radio.1.Channel._value",
	}
	WLANAssociations = Accessor{
		"InternetGatewayDevice.LANDevice.1.WLANConfiguration.1.TotalAssociations._value",
		"Device.WiFi.AccessPoint.1.AssociatedDeviceNumberOfEntries._value",
	}
)

// Lookup walks a dotted path and returns the scalar found there as a string.
// Objects, arrays, nulls and empty strings count as missing.
func (d Device) Lookup(path string) (string, bool) {
	var node interface{} = map[string]interface{}(d)
	for _, key := range strings.Split(path, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		node, ok = m[key]
		if !ok {
			return "", false
		}
	}
	s, ok := scalarString(node)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Get returns the first present value for the accessor
func (d Device) Get(a Accessor) (string, bool) {
	for _, path := range a {
		if v, ok := d.Lookup(path); ok {
			return v, true
		}
	}
	return "", false
}

// Value returns the first present value or the placeholder
func (d Device) Value(a Accessor) string {
	return d.ValueOr(a, Placeholder)
}

// ValueOr returns the first present value or def
func (d Device) ValueOr(a Accessor, def string) string {
	if v, ok := d.Get(a); ok {
		return v
	}
	return def
}

// Matches reports whether the accessor yields exactly term
func (d Device) Matches(a Accessor, term string) bool {
	v, ok := d.Get(a)
	return ok && v == term
}

// ID returns the GenieACS device id. Falls back to OUI-ProductClass-Serial when
// the record carries no _id.
func (d Device) ID() string {
	if v, ok := d.Lookup("_id"); ok {
		return v
	}
	oui, okO := d.Get(OUI)
	pc, okP := d.Get(ProductClass)
	sn, okS := d.Get(StructuredSerial)
	if !okO || !okP || !okS {
		return ""
	}
	return oui + "-" + pc + "-" + sn
}

// DisplayID is OUI-ProductClass-Serial with missing parts left empty
func (d Device) DisplayID() string {
	return strings.Join([]string{
		d.ValueOr(OUI, ""),
		d.ValueOr(ProductClass, ""),
		d.ValueOr(StructuredSerial, ""),
	}, "-")
}

// SearchKey is the handle quick commands should use for this device:
// the PPPoE username when known, otherwise the serial number.
func (d Device) SearchKey() string {
	if v, ok := d.Get(PPPoEUsername); ok {
		return v
	}
	return d.Value(SerialNumber)
}

// IsOnline is the single online heuristic: a registered event, or a PPPoE IP,
// or a non-zero device uptime.
func (d Device) IsOnline() bool {
	if v, ok := d.Get(Registered); ok && truthy(v) {
		return true
	}
	if v, ok := d.Get(PPPoEIP); ok && v != Placeholder {
		return true
	}
	if v, ok := d.Get(DeviceUptime); ok && v != "0" {
		return true
	}
	return false
}

// WLANEnabledState reports the WLAN enable flag; missing means disabled
func (d Device) WLANEnabledState() bool {
	v, ok := d.Get(WLANEnabled)
	return ok && truthy(v)
}

// Host is one LAN client from the Hosts table
type Host struct {
	Name   string
	IP     string
	MAC    string
	Active bool
}

const hostsTable = "InternetGatewayDevice.LANDevice.1.Hosts.Host"

// Hosts lists the LAN clients the CPE reported, ordered by table index
func (d Device) Hosts() []Host {
	var node interface{} = map[string]interface{}(d)
	for _, key := range strings.Split(hostsTable, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[key]
	}
	table, ok := node.(map[string]interface{})
	if !ok {
		return nil
	}

	idx := make([]int, 0, len(table))
	for k := range table {
		if n, err := strconv.Atoi(k); err == nil {
			idx = append(idx, n)
		}
	}
	sort.Ints(idx)

	hosts := make([]Host, 0, len(idx))
	for _, n := range idx {
		entry, ok := table[strconv.Itoa(n)].(map[string]interface{})
		if !ok {
			continue
		}
		row := Device(entry)
		active, ok := row.Lookup("Active._value")
		hosts = append(hosts, Host{
			Name:   row.ValueOr(Accessor{"HostName._value"}, Placeholder),
			IP:     row.ValueOr(Accessor{"IPAddress._value"}, Placeholder),
			MAC:    row.ValueOr(Accessor{"MACAddress._value"}, Placeholder),
			Active: !ok || truthy(active),
		})
	}
	return hosts
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "", "0", "false":
		return false
	}
	return true
}

func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case nil:
		return "", false
	case map[string]interface{}, []interface{}:
		return "", false
	default:
		return fmt.Sprint(t), true
	}
}
