package bot

import "sort"

// CommandsByScope lists the command names restricted to admins and to customers
func CommandsByScope() (admin, customer []string) {
	for name, def := range commands {
		switch def.scope {
		case scopeAdmin:
			admin = append(admin, name)
		case scopeCustomer:
			customer = append(customer, name)
		}
	}
	sort.Strings(admin)
	sort.Strings(customer)
	return admin, customer
}
