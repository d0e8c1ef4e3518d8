package tariff

// Family identifies the structural variant of a tariff.
type Family string

const (
	FamilyBase            Family = "BASE"
	FamilyPeakOffPeak     Family = "PEAK_OFFPEAK"
	FamilyColorCalendar   Family = "COLOR_CALENDAR"
	FamilySpecialPeakDays Family = "SPECIAL_PEAK_DAYS"
	FamilySeasonal        Family = "SEASONAL"
	FamilyWeekend         Family = "WEEKEND"
	FamilyWeekendNight    Family = "WEEKEND_NIGHT"
)

// RateLabel tags one priced bucket of a tariff. Each family draws its labels
// from its own alphabet; no family mixes labels from another family's rules,
// though the plain peak/off-peak pair is shared by the window- and
// weekend-based families.
type RateLabel string

const (
	LabelBase RateLabel = "BASE"

	LabelPeak    RateLabel = "PEAK"
	LabelOffPeak RateLabel = "OFFPEAK"

	LabelBluePeak     RateLabel = "BLUE_PEAK"
	LabelBlueOffPeak  RateLabel = "BLUE_OFFPEAK"
	LabelWhitePeak    RateLabel = "WHITE_PEAK"
	LabelWhiteOffPeak RateLabel = "WHITE_OFFPEAK"
	LabelRedPeak      RateLabel = "RED_PEAK"
	LabelRedOffPeak   RateLabel = "RED_OFFPEAK"

	LabelNormal  RateLabel = "NORMAL"
	LabelPeakDay RateLabel = "PEAK_DAY"

	LabelWinterPeak    RateLabel = "WINTER_PEAK"
	LabelWinterOffPeak RateLabel = "WINTER_OFFPEAK"
	LabelSummerPeak    RateLabel = "SUMMER_PEAK"
	LabelSummerOffPeak RateLabel = "SUMMER_OFFPEAK"
)

// colorLabels is the full color-calendar alphabet.
var colorLabels = []RateLabel{
	LabelBluePeak, LabelBlueOffPeak,
	LabelWhitePeak, LabelWhiteOffPeak,
	LabelRedPeak, LabelRedOffPeak,
}

// seasonLabels is the seasonal alphabet without the peak-day override.
var seasonLabels = []RateLabel{
	LabelWinterPeak, LabelWinterOffPeak,
	LabelSummerPeak, LabelSummerOffPeak,
}
