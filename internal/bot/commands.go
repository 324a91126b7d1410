package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go-acs-bot/internal/genieacs"
	"go-acs-bot/internal/models"
	"go-acs-bot/internal/registry"
	"go-acs-bot/internal/resolver"
)

type scope int

const (
	scopeAnyone scope = iota
	scopeAdmin
	scopeCustomer
)

const addCustomerUsage = "/addcustomer {ID_TELEGRAM} {NAMA} {DEVICE_SN}"

type handlerFunc func(d *Dispatcher, ctx context.Context, req *request) reply

// commandDef describes who may run a command and how many arguments it needs
type commandDef struct {
	scope   scope
	minArgs int
	usage   string
	perm    string
	run     handlerFunc
}

var commands = map[string]commandDef{
	"/myid":  {scope: scopeAnyone, run: (*Dispatcher).cmdMyID},
	"/start": {scope: scopeAnyone, run: (*Dispatcher).cmdStart},

	"/devices":     {scope: scopeAdmin, run: (*Dispatcher).cmdDevices},
	"/customers":   {scope: scopeAdmin, run: (*Dispatcher).cmdCustomers},
	"/addcustomer": {scope: scopeAdmin, minArgs: 3, usage: addCustomerUsage, run: (*Dispatcher).cmdAddCustomer},
	"/delcustomer": {scope: scopeAdmin, minArgs: 1, usage: "/delcustomer {ID_TELEGRAM}", run: (*Dispatcher).cmdDelCustomer},
	"/status":      {scope: scopeAdmin, minArgs: 1, usage: "/status {SN|USERNAME}", run: (*Dispatcher).cmdStatus},
	"/signal":      {scope: scopeAdmin, minArgs: 1, usage: "/signal {SN}", run: (*Dispatcher).cmdSignal},
	"/reboot":      {scope: scopeAdmin, minArgs: 1, usage: "/reboot {SN}", run: (*Dispatcher).cmdReboot},
	"/wifi":        {scope: scopeAdmin, minArgs: 1, usage: "/wifi {SN}", run: (*Dispatcher).cmdWiFi},
	"/setwifi":     {scope: scopeAdmin, minArgs: 2, usage: "/setwifi {SN} {SSID}", run: (*Dispatcher).cmdSetWiFi},
	"/setpass":     {scope: scopeAdmin, minArgs: 2, usage: "/setpass {SN} {PASSWORD}", run: (*Dispatcher).cmdSetPass},
	"/addwan":      {scope: scopeAdmin, minArgs: 3, usage: "/addwan {SN} {USERNAME} {PASSWORD}", run: (*Dispatcher).cmdAddWAN},
	"/users":       {scope: scopeAdmin, minArgs: 1, usage: "/users {SN}", run: (*Dispatcher).cmdUsers},
	"/finduser":    {scope: scopeAdmin, minArgs: 1, usage: "/finduser {USERNAME}", run: (*Dispatcher).cmdFindUser},

	"/mystatus":   {scope: scopeCustomer, run: (*Dispatcher).cmdMyStatus},
	"/mywifi":     {scope: scopeCustomer, perm: models.PermWiFiStatus, run: (*Dispatcher).cmdMyWiFi},
	"/changepass": {scope: scopeCustomer, perm: models.PermWiFiPassword, minArgs: 1, usage: "/changepass {PASSWORD}", run: (*Dispatcher).cmdChangePass},
}

func (d *Dispatcher) cmdMyID(_ context.Context, req *request) reply {
	return okReply(renderMyID(req.chatID))
}

func (d *Dispatcher) cmdStart(_ context.Context, req *request) reply {
	switch {
	case req.decision.IsAdmin():
		return okReply(renderStartAdmin(d.name))
	case req.decision.IsCustomer():
		return okReply(renderStartCustomer(req.decision.Customer))
	default:
		return okReply(renderStartUnregistered())
	}
}

func (d *Dispatcher) cmdDevices(ctx context.Context, req *request) reply {
	devices, err := d.finder.Inventory(ctx)
	if err != nil {
		return d.fail(err, msgFailDevices)
	}
	if len(devices) == 0 {
		return reply{text: msgNoDevices, outcome: OutcomeNotFound}
	}
	req.log.Debug().Int("devices", len(devices)).Msg("listing inventory")
	return okReply(renderDevices(devices))
}

func (d *Dispatcher) cmdCustomers(_ context.Context, _ *request) reply {
	return okReply(renderCustomers(d.registry.List()))
}

// cmdAddCustomer takes the identity first and the serial last; everything in
// between is the display name.
func (d *Dispatcher) cmdAddCustomer(ctx context.Context, req *request) reply {
	args := req.cmd.args
	chatID := args[0]
	if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
		return reply{text: usage(addCustomerUsage), outcome: OutcomeUsage}
	}
	name := strings.Join(args[1:len(args)-1], " ")
	deviceSN := args[len(args)-1]

	res, err := d.registry.Add(ctx, chatID, name, deviceSN)
	if res == nil {
		return d.fail(err, msgFailAddCustomer)
	}

	rep := okReply(renderCustomerAdded(chatID, res.Customer))
	d.warnPartial(&rep, err, res.NotifyErr, msgWarnWelcome)
	return rep
}

func (d *Dispatcher) cmdDelCustomer(ctx context.Context, req *request) reply {
	chatID := req.cmd.args[0]
	res, err := d.registry.Remove(ctx, chatID)
	if res == nil {
		if errors.Is(err, registry.ErrCustomerNotFound) {
			return reply{text: msgCustomerNotFound, outcome: OutcomeNotFound, err: err}
		}
		return d.fail(err, msgFailDelCustomer)
	}

	rep := okReply(renderCustomerRemoved(chatID, res.Customer))
	d.warnPartial(&rep, err, res.NotifyErr, msgWarnFarewell)
	return rep
}

// warnPartial appends the persistence and notification warnings to a
// successful registry reply
func (d *Dispatcher) warnPartial(rep *reply, persistErr, notifyErr error, notifyWarning string) {
	var pErr *registry.PersistenceError
	if errors.As(persistErr, &pErr) {
		rep.text += "\n\n" + msgWarnPersist
		rep.outcome = OutcomePartial
		rep.err = persistErr
	}
	if notifyErr != nil {
		rep.text += "\n\n" + notifyWarning
	}
}

// refresh re-reads a resolved record by id so the status reflects the
// latest inform
func (d *Dispatcher) refresh(ctx context.Context, device genieacs.Device) (genieacs.Device, error) {
	id := device.ID()
	if id == "" {
		return device, nil
	}
	return d.gateway.GetDevice(ctx, id)
}

func (d *Dispatcher) cmdStatus(ctx context.Context, req *request) reply {
	term := req.cmd.args[0]
	device, err := d.finder.Find(ctx, term)
	if err != nil {
		return d.fail(err, msgFailStatus)
	}
	device, err = d.refresh(ctx, device)
	if err != nil {
		return d.fail(err, msgFailStatus)
	}
	return okReply(renderStatus(device, term))
}

func (d *Dispatcher) cmdSignal(ctx context.Context, req *request) reply {
	term := req.cmd.args[0]
	device, err := d.finder.Find(ctx, term)
	if err != nil {
		return d.fail(err, msgFailSignal)
	}
	return okReply(renderSignal(device, term))
}

func (d *Dispatcher) cmdReboot(ctx context.Context, req *request) reply {
	term := req.cmd.args[0]
	if _, err := d.executor.Reboot(ctx, term); err != nil {
		return d.fail(err, msgFailReboot)
	}
	return okReply(renderRebooted(term))
}

func (d *Dispatcher) cmdWiFi(ctx context.Context, req *request) reply {
	device, err := d.finder.Find(ctx, req.cmd.args[0])
	if err != nil {
		return d.fail(err, msgFailWiFi)
	}
	return okReply(renderWiFi(device))
}

func (d *Dispatcher) cmdSetWiFi(ctx context.Context, req *request) reply {
	ssid := req.cmd.rest(1)
	if _, err := d.executor.SetWiFiSSID(ctx, req.cmd.args[0], ssid); err != nil {
		return d.fail(err, msgFailSetWiFi)
	}
	return okReply(renderSSIDChanged(ssid))
}

func (d *Dispatcher) cmdSetPass(ctx context.Context, req *request) reply {
	password := req.cmd.rest(1)
	if _, err := d.executor.SetWiFiPassword(ctx, req.cmd.args[0], password); err != nil {
		return d.fail(err, msgFailSetPass)
	}
	return okReply(renderPasswordChanged(password))
}

func (d *Dispatcher) cmdAddWAN(ctx context.Context, req *request) reply {
	term, username := req.cmd.args[0], req.cmd.args[1]
	password := req.cmd.rest(2)
	if _, err := d.executor.SetWANCredentials(ctx, term, username, password); err != nil {
		return d.fail(err, msgFailAddWAN)
	}
	return okReply(renderWANSet(term, username, password))
}

func (d *Dispatcher) cmdUsers(ctx context.Context, req *request) reply {
	term := req.cmd.args[0]
	device, err := d.finder.Find(ctx, term)
	if err != nil {
		return d.fail(err, msgFailUsers)
	}
	return okReply(renderUsers(device, term))
}

func (d *Dispatcher) cmdFindUser(ctx context.Context, req *request) reply {
	username := req.cmd.args[0]
	devices, err := d.finder.Inventory(ctx)
	if err != nil {
		return d.fail(err, msgFailFindUser)
	}
	device, found := resolver.ResolveUsername(username, devices)
	if !found {
		return reply{text: msgUserNotFound, outcome: OutcomeNotFound}
	}
	return okReply(renderFindUser(username, device))
}

func (d *Dispatcher) cmdMyStatus(ctx context.Context, req *request) reply {
	customer := req.decision.Customer
	device, err := d.finder.Find(ctx, customer.DeviceSN)
	if err != nil {
		return d.fail(err, msgFailMyStatus)
	}
	device, err = d.refresh(ctx, device)
	if err != nil {
		return d.fail(err, msgFailMyStatus)
	}
	return okReply(renderMyStatus(customer, device))
}

func (d *Dispatcher) cmdMyWiFi(ctx context.Context, req *request) reply {
	device, err := d.finder.Find(ctx, req.decision.Customer.DeviceSN)
	if err != nil {
		return d.fail(err, msgFailWiFi)
	}
	return okReply(renderWiFi(device))
}

func (d *Dispatcher) cmdChangePass(ctx context.Context, req *request) reply {
	password := req.cmd.rest(0)
	if _, err := d.executor.SetWiFiPassword(ctx, req.decision.Customer.DeviceSN, password); err != nil {
		return d.fail(err, msgFailSetPass)
	}
	return okReply(renderPasswordChanged(password))
}
