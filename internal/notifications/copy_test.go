package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func record(notificationType, channel, payload string) Record {
	return Record{Type: notificationType, Channel: channel, Payload: datatypes.JSON(payload)}
}

func TestResolveUsesChannelSpecificCopy(t *testing.T) {
	catalog := DefaultCopyCatalog()
	payload := `{"request_number":"INV-0007","status":"compliance_review"}`

	sms := catalog.Resolve(record(TypeRequestStatusChanged, ChannelSMS, payload), "en")
	assert.Equal(t, "INV-0007: Compliance review", sms.Title)

	inApp := catalog.Resolve(record(TypeRequestStatusChanged, ChannelInApp, payload), "en")
	assert.Equal(t, "Request INV-0007 updated", inApp.Title)
	assert.Equal(t, "Your request is now Compliance review.", inApp.Description)
}

func TestResolveLocalizesLabels(t *testing.T) {
	catalog := DefaultCopyCatalog()
	payload := `{"request_number":"INV-0007","status":"approved"}`

	copy := catalog.Resolve(record(TypeRequestStatusChanged, ChannelEmail, payload), "ar")
	assert.Equal(t, "تم تحديث الطلب INV-0007", copy.Title)
	assert.Contains(t, copy.Description, "تمت الموافقة")
}

func TestResolvePrefersLanguageOverChannel(t *testing.T) {
	catalog := DefaultCopyCatalog()
	payload := `{"request_number":"INV-0009","status":"settling"}`

	copy := catalog.Resolve(record(TypeRequestStatusChanged, ChannelSMS, payload), "ar")
	assert.Equal(t, "تم تحديث الطلب INV-0009", copy.Title)
	assert.Contains(t, copy.Description, "قيد التسوية")

	english := catalog.Resolve(record(TypeRequestStatusChanged, ChannelSMS, payload), "en")
	assert.Equal(t, "INV-0009: Settling", english.Title)

	emailCopy := catalog.Resolve(record(TypeRequestSubmitted, ChannelEmail, `{"request_number":"INV-1","request_type":"buy"}`), "ar")
	assert.Equal(t, "تم استلام الطلب INV-1", emailCopy.Title)
}

func TestResolveMissingFieldsRenderEmpty(t *testing.T) {
	catalog := DefaultCopyCatalog()

	copy := catalog.Resolve(record(TypeRequestRejected, ChannelInApp, `{"request_number":"INV-3"}`), "en")
	assert.Equal(t, "Your request was not approved.", copy.Description)

	copy = catalog.Resolve(record(TypeRequestRejected, ChannelInApp, `{"request_number":"INV-3","note":"Incomplete KYC"}`), "en")
	assert.Equal(t, "Reason: Incomplete KYC", copy.Description)
}

func TestResolveUnknownTypeAndBadPayload(t *testing.T) {
	catalog := DefaultCopyCatalog()

	copy := catalog.Resolve(record("document_expiring", ChannelEmail, `{"message":"Passport expires soon"}`), "en")
	assert.Equal(t, "Document expiring", copy.Title)
	assert.Equal(t, "Passport expires soon", copy.Description)

	copy = catalog.Resolve(record(TypeRequestApproved, ChannelInApp, `not json`), "en")
	assert.Equal(t, "Request  approved", copy.Title)
}

func TestNewCopyCatalogRejectsBadTemplate(t *testing.T) {
	_, err := NewCopyCatalog([]CopySource{{Type: "x", Language: "en", Title: "{{.broken", Description: ""}})
	require.Error(t, err)
}

func TestPayloadFieldsFlattensValues(t *testing.T) {
	fields, err := record("x", ChannelInApp, `{"a":"s","b":2,"c":true,"d":null,"e":{"k":1}}`).PayloadFields()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "s", "b": "2", "c": "true", "d": "", "e": `{"k":1}`}, fields)
}
