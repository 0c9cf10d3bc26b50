package requests

import "investor-desk/request-portal-backend/pkg/locale"

var statusLabels = map[string]map[Status]string{
	locale.English: {
		StatusDraft:            "Draft",
		StatusSubmitted:        "Submitted",
		StatusScreening:        "Screening",
		StatusPendingInfo:      "Pending information",
		StatusComplianceReview: "Compliance review",
		StatusApproved:         "Approved",
		StatusRejected:         "Rejected",
		StatusSettling:         "Settling",
		StatusCompleted:        "Completed",
	},
	locale.Arabic: {
		StatusDraft:            "مسودة",
		StatusSubmitted:        "تم التقديم",
		StatusScreening:        "قيد الفحص",
		StatusPendingInfo:      "بانتظار معلومات إضافية",
		StatusComplianceReview: "مراجعة الامتثال",
		StatusApproved:         "تمت الموافقة",
		StatusRejected:         "مرفوض",
		StatusSettling:         "قيد التسوية",
		StatusCompleted:        "مكتمل",
	},
}

var typeLabels = map[string]map[RequestType]string{
	locale.English: {
		TypeBuy:             "Buy",
		TypeSell:            "Sell",
		TypePartnership:     "Partnership",
		TypeBoardNomination: "Board nomination",
		TypeFeedback:        "Feedback",
	},
	locale.Arabic: {
		TypeBuy:             "شراء",
		TypeSell:            "بيع",
		TypePartnership:     "شراكة",
		TypeBoardNomination: "ترشيح لمجلس الإدارة",
		TypeFeedback:        "ملاحظات",
	},
}

// StatusLabel returns the display label of s in lang, falling back to
// English and then to the raw status value.
func StatusLabel(s Status, lang string) string {
	if label, ok := statusLabels[locale.Normalize(lang)][s]; ok {
		return label
	}
	if label, ok := statusLabels[locale.English][s]; ok {
		return label
	}
	return string(s)
}

func TypeLabel(t RequestType, lang string) string {
	if label, ok := typeLabels[locale.Normalize(lang)][t]; ok {
		return label
	}
	if label, ok := typeLabels[locale.English][t]; ok {
		return label
	}
	return string(t)
}
