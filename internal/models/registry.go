package models

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelInApp = "in_app"
)

// Business categories.
const (
	CategorySystem   = "system"
	CategoryProject  = "project"
	CategoryFinance  = "finance"
	CategoryHR       = "hr"
	CategoryDevice   = "device"
	CategoryContract = "contract"
)

// ChannelLabels maps each delivery channel to its display label, served by
// GET /notifications/channels.
var ChannelLabels = map[string]string{
	ChannelEmail: "Email",
	ChannelPush:  "Push",
	ChannelSMS:   "SMS",
	ChannelInApp: "In-App",
}

// CategoryLabels maps each category to its display label, served by
// GET /notifications/categories.
var CategoryLabels = map[string]string{
	CategorySystem:   "System",
	CategoryProject:  "Projects",
	CategoryFinance:  "Finance",
	CategoryHR:       "HR & Attendance",
	CategoryDevice:   "Devices",
	CategoryContract: "Contracts",
}

// PriorityLabels maps priorities to display labels, served by
// GET /notifications/priorities.
var PriorityLabels = map[Priority]string{
	PriorityLow:    "Low",
	PriorityNormal: "Normal",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

// ValidChannel reports whether the channel is a known delivery channel.
func ValidChannel(channel string) bool {
	_, ok := ChannelLabels[channel]
	return ok
}

// ValidCategory reports whether the category is a known business category.
func ValidCategory(category string) bool {
	_, ok := CategoryLabels[category]
	return ok
}

// ValidPriority reports whether the priority is one of the known levels.
func ValidPriority(p Priority) bool {
	_, ok := PriorityLabels[p]
	return ok
}

// ValidFrequency reports whether the frequency descriptor is recognized.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyImmediate, FrequencyDaily, FrequencyWeekly, FrequencyNever:
		return true
	}
	return false
}
