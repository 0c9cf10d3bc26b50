package timeline

import (
	"fmt"

	"investor-desk/request-portal-backend/pkg/locale"
)

type phrases struct {
	unknownUser   string
	system        string
	statusChanged string
	created       string
	previously    string
	comment       string
}

var copyByLanguage = map[string]phrases{
	locale.English: {
		unknownUser:   "Unknown user",
		system:        "System",
		statusChanged: "Status changed to %s",
		created:       "Request created as %s",
		previously:    "From %s",
		comment:       "Internal comment",
	},
	locale.Arabic: {
		unknownUser:   "مستخدم غير معروف",
		system:        "النظام",
		statusChanged: "تم تغيير الحالة إلى %s",
		created:       "تم إنشاء الطلب بحالة %s",
		previously:    "من %s",
		comment:       "تعليق داخلي",
	},
}

func phrasesFor(lang string) phrases {
	if p, ok := copyByLanguage[locale.Normalize(lang)]; ok {
		return p
	}
	return copyByLanguage[locale.English]
}

func (p phrases) statusTitle(label string, creation bool) string {
	if creation {
		return fmt.Sprintf(p.created, label)
	}
	return fmt.Sprintf(p.statusChanged, label)
}

func (p phrases) previousStatus(label string) string {
	return fmt.Sprintf(p.previously, label)
}
