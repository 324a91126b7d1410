package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-acs-bot/internal/models"
)

type staticCustomers map[string]*models.Customer

func (s staticCustomers) Get(chatID string) (*models.Customer, bool) {
	c, ok := s[chatID]
	return c, ok
}

func TestClassify(t *testing.T) {
	customers := staticCustomers{
		"200": {Name: "Budi", DeviceSN: "SN1"},
		"100": {Name: "Admin too", DeviceSN: "SN2"},
	}
	c := New([]string{"100"}, customers)

	d := c.Classify("100")
	assert.Equal(t, models.RoleAdmin, d.Role)
	assert.True(t, d.IsAdmin())
	assert.Nil(t, d.Customer)

	d = c.Classify("200")
	assert.Equal(t, models.RoleCustomer, d.Role)
	assert.True(t, d.IsCustomer())
	assert.Equal(t, "Budi", d.Customer.Name)

	d = c.Classify("300")
	assert.Equal(t, models.RoleUnauthorized, d.Role)
	assert.False(t, d.IsAdmin())
	assert.False(t, d.IsCustomer())
}

func TestClassifyWithoutRegistry(t *testing.T) {
	c := New(nil, nil)
	assert.Equal(t, models.RoleUnauthorized, c.Classify("1").Role)
	assert.Empty(t, c.Admins())
}
