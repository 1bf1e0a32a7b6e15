package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRecognizedFamilies(t *testing.T) {
	assert.Equal(t, KindRecord, Classify("AD_Element", false))
	assert.Equal(t, KindRecord, Classify("AD_Window", false))
	assert.Equal(t, KindRecord, Classify("mp_meter", true))
	assert.Equal(t, KindRecord, Classify("a_asset", true))
	assert.Equal(t, KindRecord, Classify("A_Asset_Group", false))
	assert.Equal(t, KindRecord, Classify("MP_JobStandar", false))
}

func TestClassifyValueTags(t *testing.T) {
	assert.Equal(t, KindValue, Classify("Name", false))
	assert.Equal(t, KindValue, Classify("IsActive", false))
	assert.Equal(t, KindValue, Classify("TableName", false))
	assert.Equal(t, KindValue, Classify("AD_Client_ID", false))
	assert.Equal(t, KindValue, Classify("AD_Element_UU", false))
	assert.Equal(t, KindValue, Classify("Parent_Column_ID", false))
	assert.Equal(t, KindValue, Classify("idempiere", false))
	assert.Equal(t, KindValue, Classify("adempierePackage", false))
}

func TestClassifyUnknownEntities(t *testing.T) {
	assert.Equal(t, KindUnknownEntity, Classify("ZZ_Custom", false))
	assert.Equal(t, KindUnknownEntity, Classify("C_Order", false))
	assert.Equal(t, KindUnknownEntity, Classify("xx_employee", true))
	// lowercase without an action attribute stays a value tag
	assert.Equal(t, KindValue, Classify("xx_employee", false))
}

func TestClassifyPrefixFamilies(t *testing.T) {
	// prefixed record tags are recognized even outside the closed set
	assert.Equal(t, KindRecord, Classify("AD_Ref_List", false))
	assert.Equal(t, KindRecord, Classify("MP_Maintain_Detail", false))
	// but reference and UUID suffixes inside the family stay values
	assert.Equal(t, KindValue, Classify("AD_Reference_ID", false))
	assert.Equal(t, KindValue, Classify("MP_Maintain_UU", false))
}
