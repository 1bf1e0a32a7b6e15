package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColumnTagPrefix(t *testing.T) {
	cases := []struct {
		token  string
		name   string
		refID  int
		length int
	}{
		{"Q#Qty", "Qty", RefQuantity, 255},
		{"A#Salary", "Salary", RefAmount, 22},
		{"Y#IsPaid", "IsPaid", RefYesNo, 1},
		{"D#StartDate", "StartDate", RefDate, 29},
		{"d#LastSeen", "LastSeen", RefDateTime, 29},
		{"T#Notes", "Notes", RefText, 4000},
		{"L#Status", "Status", RefList, 10},
	}

	for _, c := range cases {
		spec := ParseColumn(c.token)
		assert.Equal(t, c.name, spec.Name, "token %s", c.token)
		assert.Equal(t, c.refID, spec.ReferenceID, "token %s", c.token)
		assert.Equal(t, c.length, spec.FieldLength, "token %s", c.token)
	}
}

func TestParseColumnTypeSuffix(t *testing.T) {
	cases := []struct {
		token string
		name  string
		refID int
	}{
		{"Name:string", "Name", RefString},
		{"Notes:text", "Notes", RefText},
		{"Age:number", "Age", RefInteger},
		{"Age:integer", "Age", RefInteger},
		{"Salary:amount", "Salary", RefAmount},
		{"StartDate:date", "StartDate", RefDate},
		{"LastSeen:datetime", "LastSeen", RefDateTime},
		{"Status:list", "Status", RefList},
		{"Category:table", "Category", RefTable},
		{"IsPaid:yes-no", "IsPaid", RefYesNo},
		{"IsPaid:boolean", "IsPaid", RefYesNo},
		{"Mystery:whatever", "Mystery", RefString},
	}

	for _, c := range cases {
		spec := ParseColumn(c.token)
		assert.Equal(t, c.name, spec.Name, "token %s", c.token)
		assert.Equal(t, c.refID, spec.ReferenceID, "token %s", c.token)
	}
}

func TestParseColumnDefaults(t *testing.T) {
	spec := ParseColumn("Name")
	assert.Equal(t, "Name", spec.Name)
	assert.Equal(t, RefString, spec.ReferenceID)
	assert.Equal(t, 255, spec.FieldLength)

	spec = ParseColumn("C_BPartner_ID")
	assert.Equal(t, "C_BPartner_ID", spec.Name)
	assert.Equal(t, RefTableDir, spec.ReferenceID)
	assert.Equal(t, 22, spec.FieldLength)
}

func TestParseColumnSet(t *testing.T) {
	specs := ParseColumnSet("Name, L#Status, ,D#StartDate")
	assert.Len(t, specs, 3)
	assert.Equal(t, "Name", specs[0].Name)
	assert.Equal(t, "Status", specs[1].Name)
	assert.Equal(t, RefList, specs[1].ReferenceID)
	assert.Equal(t, "StartDate", specs[2].Name)
}

func TestFieldLength(t *testing.T) {
	assert.Equal(t, 255, FieldLength(RefString))
	assert.Equal(t, 22, FieldLength(RefInteger))
	assert.Equal(t, 22, FieldLength(RefID))
	assert.Equal(t, 4000, FieldLength(RefText))
	assert.Equal(t, 29, FieldLength(RefDate))
	assert.Equal(t, 1, FieldLength(RefYesNo))
	assert.Equal(t, 36, FieldLength(RefUUID))
	assert.Equal(t, 255, FieldLength(999))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Maintenance Order", DisplayName("Maintenance_Order"))
	assert.Equal(t, "Name", DisplayName("Name"))
}
