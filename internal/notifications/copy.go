package notifications

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"investor-desk/request-portal-backend/internal/requests"
	"investor-desk/request-portal-backend/pkg/locale"
)

// anyChannel marks a catalog entry shared by every channel without its own copy.
const anyChannel = ""

type copyKey struct {
	Type     string
	Channel  string
	Language string
}

type copyTemplate struct {
	title       *template.Template
	description *template.Template
}

// CopyCatalog resolves notification title and description by (type, channel)
// in the reader's language.
type CopyCatalog struct {
	entries map[copyKey]copyTemplate
}

// CopySource is the raw text of one catalog entry. Templates see the payload
// fields as .field_name and may call {{status .status}} for a localized label.
type CopySource struct {
	Type        string
	Channel     string
	Language    string
	Title       string
	Description string
}

// NewCopyCatalog parses sources. A malformed template is a programming error
// and is reported immediately.
func NewCopyCatalog(sources []CopySource) (*CopyCatalog, error) {
	catalog := &CopyCatalog{entries: make(map[copyKey]copyTemplate, len(sources))}
	for _, src := range sources {
		lang := locale.Normalize(src.Language)
		funcs := template.FuncMap{
			"status": func(s string) string { return requests.StatusLabel(requests.Status(s), lang) },
			"type":   func(t string) string { return requests.TypeLabel(requests.RequestType(t), lang) },
		}
		name := src.Type + "/" + src.Channel + "/" + lang

		title, err := template.New(name + "/title").Funcs(funcs).Option("missingkey=zero").Parse(src.Title)
		if err != nil {
			return nil, fmt.Errorf("invalid title template %s: %w", name, err)
		}
		description, err := template.New(name + "/description").Funcs(funcs).Option("missingkey=zero").Parse(src.Description)
		if err != nil {
			return nil, fmt.Errorf("invalid description template %s: %w", name, err)
		}
		catalog.entries[copyKey{Type: src.Type, Channel: src.Channel, Language: lang}] = copyTemplate{
			title:       title,
			description: description,
		}
	}
	return catalog, nil
}

// DefaultCopyCatalog returns the built-in English and Arabic copy.
func DefaultCopyCatalog() *CopyCatalog {
	catalog, err := NewCopyCatalog(defaultCopy)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Resolve renders the copy for record in lang. Lookup falls back from the
// exact channel to any channel, then from lang to English. Records with no
// entry at all get a title derived from their type.
func (c *CopyCatalog) Resolve(record Record, lang string) Copy {
	lang = locale.Normalize(lang)
	fields, err := record.PayloadFields()
	if err != nil {
		fields = map[string]string{}
	}

	for _, key := range []copyKey{
		{record.Type, record.Channel, lang},
		{record.Type, anyChannel, lang},
		{record.Type, record.Channel, locale.English},
		{record.Type, anyChannel, locale.English},
	} {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		rendered, err := entry.render(fields)
		if err != nil {
			break
		}
		return rendered
	}

	return Copy{Title: humanize(record.Type), Description: fields["message"]}
}

func (t copyTemplate) render(fields map[string]string) (Copy, error) {
	var title, description bytes.Buffer
	if err := t.title.Execute(&title, fields); err != nil {
		return Copy{}, err
	}
	if err := t.description.Execute(&description, fields); err != nil {
		return Copy{}, err
	}
	return Copy{
		Title:       strings.TrimSpace(title.String()),
		Description: strings.TrimSpace(description.String()),
	}, nil
}

func humanize(notificationType string) string {
	words := strings.Fields(strings.ReplaceAll(notificationType, "_", " "))
	if len(words) == 0 {
		return "Notification"
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

var defaultCopy = []CopySource{
	// English
	{
		Type: TypeRequestSubmitted, Channel: anyChannel, Language: locale.English,
		Title:       "Request {{.request_number}} received",
		Description: "We received your {{type .request_type}} request and will review it shortly.",
	},
	{
		Type: TypeRequestStatusChanged, Channel: anyChannel, Language: locale.English,
		Title:       "Request {{.request_number}} updated",
		Description: "Your request is now {{status .status}}.{{if .note}} {{.note}}{{end}}",
	},
	{
		Type: TypeInfoRequested, Channel: anyChannel, Language: locale.English,
		Title:       "More information needed for {{.request_number}}",
		Description: "{{.note}}",
	},
	{
		Type: TypeRequestApproved, Channel: anyChannel, Language: locale.English,
		Title:       "Request {{.request_number}} approved",
		Description: "Your request has been approved and will move to settlement.",
	},
	{
		Type: TypeRequestRejected, Channel: anyChannel, Language: locale.English,
		Title:       "Request {{.request_number}} rejected",
		Description: "{{if .note}}Reason: {{.note}}{{else}}Your request was not approved.{{end}}",
	},
	{
		Type: TypeRequestCompleted, Channel: anyChannel, Language: locale.English,
		Title:       "Request {{.request_number}} completed",
		Description: "Settlement is complete.",
	},
	{
		Type: TypeRequestStatusChanged, Channel: ChannelSMS, Language: locale.English,
		Title:       "{{.request_number}}: {{status .status}}",
		Description: "{{.request_number}} is now {{status .status}}.",
	},
	{
		Type: TypeRequestSubmitted, Channel: ChannelEmail, Language: locale.English,
		Title:       "We received request {{.request_number}}",
		Description: "Thank you. Our team will review your {{type .request_type}} request and contact you by email.",
	},

	// Arabic
	{
		Type: TypeRequestSubmitted, Channel: anyChannel, Language: locale.Arabic,
		Title:       "تم استلام الطلب {{.request_number}}",
		Description: "استلمنا طلب {{type .request_type}} الخاص بك وسنراجعه قريباً.",
	},
	{
		Type: TypeRequestStatusChanged, Channel: anyChannel, Language: locale.Arabic,
		Title:       "تم تحديث الطلب {{.request_number}}",
		Description: "حالة طلبك الآن: {{status .status}}.{{if .note}} {{.note}}{{end}}",
	},
	{
		Type: TypeInfoRequested, Channel: anyChannel, Language: locale.Arabic,
		Title:       "مطلوب معلومات إضافية للطلب {{.request_number}}",
		Description: "{{.note}}",
	},
	{
		Type: TypeRequestApproved, Channel: anyChannel, Language: locale.Arabic,
		Title:       "تمت الموافقة على الطلب {{.request_number}}",
		Description: "تمت الموافقة على طلبك وسينتقل إلى مرحلة التسوية.",
	},
	{
		Type: TypeRequestRejected, Channel: anyChannel, Language: locale.Arabic,
		Title:       "تم رفض الطلب {{.request_number}}",
		Description: "{{if .note}}السبب: {{.note}}{{else}}لم تتم الموافقة على طلبك.{{end}}",
	},
	{
		Type: TypeRequestCompleted, Channel: anyChannel, Language: locale.Arabic,
		Title:       "اكتمل الطلب {{.request_number}}",
		Description: "اكتملت عملية التسوية.",
	},
}
