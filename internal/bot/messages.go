package bot

import (
	"fmt"
	"strings"

	"go-acs-bot/internal/format"
	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/registry"
)

// Fixed replies, already escaped for MarkdownV2
const (
	msgDeviceNotFound   = "❌ Device tidak ditemukan\\. Gunakan:\n\\- Serial Number\n\\- PPPoE Username"
	msgInvalidParameter = "❌ Parameter tidak valid"
	msgPasswordTooShort = "❌ Password harus minimal 8 karakter"
	msgSSIDInvalid      = "❌ SSID harus 1\\-32 karakter"
	msgEmptyCredential  = "❌ Username dan password WAN tidak boleh kosong"
	msgACSUnavailable   = "❌ Server ACS sedang tidak dapat dihubungi\\. Silakan coba beberapa saat lagi\\."
	msgCustomerNotFound = "❌ Pelanggan tidak ditemukan"
	msgNoDevices        = "❌ Tidak ada device yang ditemukan"
	msgNotPermitted     = "❌ Perintah ini tidak tersedia untuk akun Anda\\. Silakan hubungi admin\\."
	msgInternalError    = "❌ Terjadi kesalahan internal\\. Silakan coba lagi\\."
	msgUserNotFound     = "❌ Username tidak ditemukan di perangkat manapun\\."

	msgFailDevices     = "❌ Terjadi kesalahan saat mengambil data device\\.\nSilakan coba beberapa saat lagi\\."
	msgFailStatus      = "❌ Gagal mengambil status device"
	msgFailMyStatus    = "❌ Gagal mengambil status perangkat"
	msgFailSignal      = "❌ Gagal mengambil data signal"
	msgFailReboot      = "❌ Gagal me\\-restart device"
	msgFailWiFi        = "❌ Gagal mengambil status WiFi"
	msgFailSetWiFi     = "❌ Gagal mengubah nama WiFi"
	msgFailSetPass     = "❌ Gagal mengubah password WiFi"
	msgFailAddWAN      = "❌ Gagal mengatur WAN credentials"
	msgFailUsers       = "❌ Gagal mengambil daftar user terhubung"
	msgFailFindUser    = "❌ Gagal mencari pengguna"
	msgFailAddCustomer = "❌ Gagal menambahkan pelanggan"
	msgFailDelCustomer = "❌ Gagal menghapus pelanggan"

	msgWarnPersist = "⚠️ *Peringatan:* Perubahan belum tersimpan ke konfigurasi dan bisa hilang saat bot dijalankan ulang\\."
	msgWarnWelcome = "⚠️ *Peringatan:* Pelanggan berhasil ditambahkan tapi gagal mengirim pesan selamat datang\\. " +
		"Pastikan pelanggan sudah memulai chat dengan bot\\."
	msgWarnFarewell = "⚠️ *Peringatan:* Gagal mengirim pemberitahuan ke pelanggan\\."

	divider = "\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\\-\n\n"
)

func usage(syntax string) string {
	return "❗ Format: " + format.Code(syntax)
}

func statusLabel(d genieacs.Device) string {
	if d.IsOnline() {
		return "🟢 Online"
	}
	return "🔴 Offline"
}

func renderMyID(chatID string) string {
	return "🆔 *ID Telegram Anda*\n\n" +
		"ID: " + format.Code(chatID) + "\n\n" +
		"❗ Berikan ID ini kepada admin untuk didaftarkan"
}

func renderStartUnregistered() string {
	return "👋 *Selamat datang di Bot GenieACS*\n\n" +
		"⚠️ Anda belum terdaftar dalam sistem\\.\n\n" +
		"📱 *Untuk mendaftar:*\n" +
		"1\\. Gunakan perintah /myid\n" +
		"2\\. Copy ID Telegram Anda\n" +
		"3\\. Berikan ID tersebut ke admin\n\n" +
		"❗ Admin akan mendaftarkan perangkat Anda"
}

func renderStartAdmin(botName string) string {
	return "🏢 *" + format.Escape(botName) + " Admin Panel*\n\n" +
		"📱 *Perintah Admin:*\n" +
		"/devices \\- Lihat semua device\n" +
		"/customers \\- Lihat daftar pelanggan\n" +
		"/addcustomer \\{ID\\_TELEGRAM\\} \\{NAMA\\} \\{DEVICE\\_SN\\} \\- Tambah pelanggan\n" +
		"/delcustomer \\{ID\\_TELEGRAM\\} \\- Hapus pelanggan\n" +
		"/status \\{SN\\} \\- Cek status device\n" +
		"/signal \\{SN\\} \\- Cek signal device\n" +
		"/reboot \\{SN\\} \\- Reboot device\n" +
		"/wifi \\{SN\\} \\- Cek status WiFi\n" +
		"/setwifi \\{SN\\} \\{SSID\\} \\- Ganti nama WiFi\n" +
		"/setpass \\{SN\\} \\{PASSWORD\\} \\- Ganti password WiFi\n" +
		"/addwan \\{SN\\} \\{USERNAME\\} \\{PASSWORD\\} \\- Set WAN credentials\n" +
		"/users \\{SN\\} \\- Cek user terhubung\n" +
		"/finduser \\{USERNAME\\} \\- Cari device dari username PPPoE\n\n" +
		"*Cara Menambah Pelanggan:*\n" +
		"1\\. Minta pelanggan kirim /myid ke bot\n" +
		"2\\. Gunakan ID tersebut di perintah /addcustomer\n" +
		"3\\. Contoh: " + format.Code(`/addcustomer 123456789 "John Doe" ZTEGC8F12345`) + "\n\n" +
		"❗ ID Telegram berbeda dengan nomor telepon\n" +
		"❗ Gunakan /devices untuk melihat daftar perintah lengkap per device"
}

func renderCustomerMenu(c *models.Customer) string {
	var b strings.Builder
	b.WriteString("📱 *Perintah yang tersedia:*\n")
	b.WriteString("/mystatus \\- Cek status perangkat Anda\n")
	if c.Allows(models.PermWiFiStatus) {
		b.WriteString("/mywifi \\- Cek status WiFi\n")
	}
	if c.Allows(models.PermWiFiPassword) {
		b.WriteString("/changepass \\{PASSWORD\\} \\- Ganti password WiFi\n\n")
		b.WriteString("❗ Password WiFi minimal 8 karakter\n")
		b.WriteString("❗ Gunakan kombinasi huruf dan angka")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStartCustomer(c *models.Customer) string {
	return "👋 *Selamat datang " + format.Escape(c.Name) + "*\n\n" + renderCustomerMenu(c)
}

func renderWelcome(botName string, c *models.Customer) string {
	return "✅ *Selamat datang di " + format.Escape(botName) + "\\!*\n\n" +
		"Halo " + format.Escape(c.Name) + "\\, akun Anda telah didaftarkan\\.\n\n" +
		renderCustomerMenu(c)
}

func renderFarewell() string {
	return "⚠️ *Pemberitahuan*\n\n" +
		"Akun Anda telah dinonaktifkan\\. " +
		"Silakan hubungi admin untuk informasi lebih lanjut\\."
}

func quickCommands(key string) string {
	return "*Quick Commands:*\n" +
		format.Code("/status "+key) + " \\- Cek detail\n" +
		format.Code("/wifi "+key) + " \\- Cek WiFi\n" +
		format.Code("/setwifi "+key+" WIFI-NAME") + " \\- Ganti SSID\n" +
		format.Code("/setpass "+key+" PASSWORD") + " \\- Ganti Password\n" +
		format.Code("/reboot "+key) + " \\- Restart Device\n"
}

func renderDevices(devices []genieacs.Device) string {
	var b strings.Builder
	b.WriteString("📱 *Daftar Device*\n\n")
	for i, d := range devices {
		fmt.Fprintf(&b, "%d\\. *%s*\n", i+1, format.Escape(d.Value(genieacs.SerialNumber)))
		b.WriteString("Status: " + statusLabel(d) + "\n")
		b.WriteString("Device ID: " + format.Code(d.DisplayID()) + "\n")
		b.WriteString("Manufacturer: " + format.Code(d.Value(genieacs.Manufacturer)) + "\n")
		b.WriteString("OUI: " + format.Code(d.Value(genieacs.OUI)) + "\n")
		b.WriteString("Model: " + format.Code(d.Value(genieacs.ProductClass)) + "\n")
		b.WriteString("Mode: " + format.Code(d.Value(genieacs.PONMode)) + "\n")
		b.WriteString("👤 Username: " + format.Code(d.Value(genieacs.PPPoEUsername)) + "\n")
		b.WriteString("📡 IP: " + format.Code(d.Value(genieacs.PPPoEIP)) + "\n")
		b.WriteString("📶 Signal: " + format.Code(d.Value(genieacs.RXPower)+" dBm") + "\n")
		b.WriteString("⏱️ Device Uptime: " + format.Code(d.Value(genieacs.DeviceUptime)) + "\n")
		b.WriteString("⏱️ PPPoE Uptime: " + format.Code(d.Value(genieacs.PPPUptime)) + "\n")
		b.WriteString("👥 Connected Users: " + format.Code(d.ValueOr(genieacs.ConnectedDevices, "0")) + "\n\n")
		b.WriteString(quickCommands(d.SearchKey()))
		b.WriteString("\n" + divider)
	}
	return b.String()
}

func renderStatus(d genieacs.Device, term string) string {
	return "📱 *Informasi Device*\n\n" +
		"*Device Info:*\n" +
		"SN: " + format.Code(d.Value(genieacs.SerialNumber)) + "\n" +
		"Manufacturer: " + format.Code(d.Value(genieacs.Manufacturer)) + "\n" +
		"Mode: " + format.Code(d.Value(genieacs.PONMode)) + "\n" +
		"MAC PON: " + format.Code(d.Value(genieacs.PONMac)) + "\n\n" +
		"*Status:*\n" +
		"Status: " + statusLabel(d) + "\n" +
		"Device Uptime: " + format.Code(d.Value(genieacs.DeviceUptime)) + "\n" +
		"PPPoE Uptime: " + format.Code(d.Value(genieacs.PPPUptime)) + "\n\n" +
		"*PPPoE:*\n" +
		"Username: " + format.Code(d.Value(genieacs.PPPoEUsername)) + "\n" +
		"IP: " + format.Code(d.Value(genieacs.PPPoEIP)) + "\n\n" +
		"*Signal:*\n" +
		"RX Power: " + format.Code(d.Value(genieacs.RXPower)+" dBm") + "\n" +
		"Redaman: " + format.Code(d.Value(genieacs.Attenuation)+" dBm") + "\n\n" +
		"*WiFi:*\n" +
		"Connected Users: " + format.Code(d.ValueOr(genieacs.ConnectedDevices, "0")) + "\n\n" +
		"*Quick Commands:*\n" +
		format.Code("/wifi "+term) + " \\- Cek WiFi\n" +
		format.Code("/setwifi "+term+" WIFI-NAME") + " \\- Ganti SSID\n" +
		format.Code("/setpass "+term+" PASSWORD") + " \\- Ganti Password\n" +
		format.Code("/reboot "+term) + " \\- Restart Device"
}

func renderMyStatus(c *models.Customer, d genieacs.Device) string {
	return "📱 *Status Perangkat Anda*\n\n" +
		"Pelanggan: " + format.Escape(c.Name) + "\n" +
		"Status: " + statusLabel(d) + "\n" +
		"Signal: " + format.Escape(d.Value(genieacs.RXPower)) + " dBm\n" +
		"IP: " + format.Escape(d.Value(genieacs.PPPoEIP)) + "\n" +
		"Uptime: " + format.Escape(d.Value(genieacs.DeviceUptime)) + "\n"
}

func renderSignal(d genieacs.Device, term string) string {
	return "📶 *Signal Device*\n\n" +
		"Device: " + format.Code(term) + "\n" +
		"Status: " + statusLabel(d) + "\n" +
		"Mode: " + format.Code(d.Value(genieacs.PONMode)) + "\n" +
		"RX Power: " + format.Code(d.Value(genieacs.RXPower)+" dBm") + "\n" +
		"Redaman: " + format.Code(d.Value(genieacs.Attenuation)+" dBm") + "\n" +
		"Suhu: " + format.Code(d.Value(genieacs.Temperature)+" °C") + "\n"
}

func renderWiFi(d genieacs.Device) string {
	enabled := "Disabled"
	if d.WLANEnabledState() {
		enabled = "Enabled"
	}
	return "📡 *WiFi Status*\n\n" +
		"SSID: " + format.Value(d.Value(genieacs.WLANSSID)) + "\n" +
		"Connected Users: " + format.Value(d.ValueOr(genieacs.WLANAssociations, "0")) + "\n" +
		"Channel: " + format.Value(d.Value(genieacs.WLANChannel)) + "\n" +
		"Status: " + enabled + "\n"
}

func renderUsers(d genieacs.Device, term string) string {
	var b strings.Builder
	b.WriteString("👥 *User Terhubung*\n\n")
	b.WriteString("Device: " + format.Code(term) + "\n")
	b.WriteString("Total: " + format.Code(d.ValueOr(genieacs.ConnectedDevices, "0")) + "\n\n")

	hosts := d.Hosts()
	if len(hosts) == 0 {
		b.WriteString("Tidak ada data host dari perangkat\\.\n")
		return b.String()
	}
	for i, h := range hosts {
		state := "🟢"
		if !h.Active {
			state = "⚪"
		}
		fmt.Fprintf(&b, "%d\\. %s *%s*\n", i+1, state, format.Escape(h.Name))
		b.WriteString("IP: " + format.Code(h.IP) + "\n")
		b.WriteString("MAC: " + format.Code(h.MAC) + "\n\n")
	}
	return b.String()
}

func renderFindUser(username string, d genieacs.Device) string {
	sn := d.Value(genieacs.SerialNumber)
	return "✅ *Pengguna Ditemukan\\!*\n\n" +
		"👤 Username: " + format.Code(username) + "\n" +
		"📱 Serial Number: " + format.Code(sn) + "\n\n" +
		"*Quick Command untuk menambahkan:*\n" +
		format.Code("/addcustomer {TELEGRAM_ID} {NAMA} "+sn) + "\n\n" +
		"❗ Ganti \\{TELEGRAM\\_ID\\} dengan ID dari /myid\n" +
		"❗ Ganti \\{NAMA\\} dengan nama pelanggan"
}

func renderCustomers(entries []registry.Entry) string {
	var b strings.Builder
	b.WriteString("👥 *Daftar Pelanggan*\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\\. *%s*\n", i+1, format.Escape(e.Customer.Name))
		b.WriteString("📱 Telegram ID: " + format.Code(e.ChatID) + "\n")
		b.WriteString("📶 Device SN: " + format.Code(e.Customer.DeviceSN) + "\n\n")
		b.WriteString("*Quick Commands:*\n")
		b.WriteString(format.Code("/status "+e.Customer.DeviceSN) + " \\- Cek status\n")
		b.WriteString(format.Code("/delcustomer "+e.ChatID) + " \\- Hapus pelanggan\n")
		b.WriteString(divider)
	}
	if len(entries) == 0 {
		b.WriteString("Belum ada pelanggan terdaftar\\.\n\n")
	}
	b.WriteString("*Cara Menambah Pelanggan Baru:*\n")
	b.WriteString("1\\. Minta pelanggan kirim /myid ke bot\n")
	b.WriteString("2\\. Gunakan format berikut:\n")
	b.WriteString(format.Code("/addcustomer {ID_TELEGRAM} {NAMA} {DEVICE_SN}") + "\n\n")
	b.WriteString("❗ Contoh: " + format.Code(`/addcustomer 123456789 "John Doe" ZTEGC8F12345`) + "\n")
	return b.String()
}

func renderCustomerAdded(chatID string, c *models.Customer) string {
	return "✅ *Pelanggan berhasil ditambahkan\\!*\n\n" +
		"Nama: " + format.Code(c.Name) + "\n" +
		"Telegram ID: " + format.Code(chatID) + "\n" +
		"Device SN: " + format.Code(c.DeviceSN) + "\n\n" +
		"*Quick Commands untuk pelanggan ini:*\n" +
		format.Code("/delcustomer "+chatID) + " \\- Hapus pelanggan\n" +
		format.Code("/status "+c.DeviceSN) + " \\- Cek status device"
}

func renderCustomerRemoved(chatID string, c *models.Customer) string {
	return "✅ *Pelanggan berhasil dihapus\\!*\n\n" +
		"Nama: " + format.Code(c.Name) + "\n" +
		"Telegram ID: " + format.Code(chatID) + "\n" +
		"Device SN: " + format.Code(c.DeviceSN)
}

func renderRebooted(term string) string {
	return "🔄 *Perintah reboot terkirim\\!*\n\n" +
		"Device: " + format.Code(term) + "\n\n" +
		"❗ Perangkat akan offline beberapa menit"
}

func renderSSIDChanged(ssid string) string {
	return "✅ *Nama WiFi berhasil diubah\\!*\n\n" +
		"SSID Baru: " + format.Code(ssid) + "\n\n" +
		"❗ Perangkat yang terhubung perlu reconnect"
}

func renderPasswordChanged(password string) string {
	return "✅ *Password WiFi berhasil diubah\\!*\n\n" +
		"Password baru: " + format.Code(password) + "\n\n" +
		"❗ Perangkat yang terhubung perlu reconnect"
}

func renderWANSet(term, username, password string) string {
	return "✅ *WAN Credentials berhasil diatur\\!*\n\n" +
		"Device: " + format.Code(term) + "\n" +
		"Username: " + format.Code(username) + "\n" +
		"Password: " + format.Code(password)
}
