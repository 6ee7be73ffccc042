package domain

// Decision timelines.
const (
	TimelineImmediate  = "Immediate (0-3 months)"
	TimelineShortTerm  = "Short-term (3-6 months)"
	TimelineMediumTerm = "Medium-term (6-12 months)"
	TimelineLongTerm   = "Long-term (12+ months)"
)

// Developer types.
const (
	DeveloperIndividual = "Individual/Family Developer"
	DeveloperCommercial = "Commercial Developer (Large Projects)"
	DeveloperGovernment = "Government/Municipal Developer"
	DeveloperNonProfit  = "Non-Profit Housing Developer"
	DeveloperPrivate    = "Private Developer (Medium Projects)"
	DeveloperIndigenous = "Indigenous Community/Organization"
)

// Government program participation.
const (
	GovernmentParticipating    = "Participating in government programs"
	GovernmentNotParticipating = "Not participating"
)

// Build Canada / ESG self-certification.
const (
	BuildCanadaYes     = "Yes"
	BuildCanadaNo      = "No"
	BuildCanadaUnknown = "I don't know"
)

// Readiness phases. ReadinessResearching caps the score and forces the lowest tier.
const (
	ReadinessResearching    = "researching"
	ReadinessPlanningLong   = "planning-long"
	ReadinessPlanningMedium = "planning-medium"
	ReadinessPlanningShort  = "planning-short"
	ReadinessImmediate      = "immediate"
)

// Canadian provinces and territories.
const (
	ProvinceAlberta              = "Alberta"
	ProvinceBritishColumbia      = "British Columbia"
	ProvinceManitoba             = "Manitoba"
	ProvinceNewBrunswick         = "New Brunswick"
	ProvinceNewfoundlandLabrador = "Newfoundland and Labrador"
	ProvinceNorthwestTerritories = "Northwest Territories"
	ProvinceNovaScotia           = "Nova Scotia"
	ProvinceNunavut              = "Nunavut"
	ProvinceOntario              = "Ontario"
	ProvincePrinceEdwardIsland   = "Prince Edward Island"
	ProvinceQuebec               = "Quebec"
	ProvinceSaskatchewan         = "Saskatchewan"
	ProvinceYukon                = "Yukon"
)

// Timelines lists every accepted decision timeline, most urgent first.
var Timelines = []string{TimelineImmediate, TimelineShortTerm, TimelineMediumTerm, TimelineLongTerm}

// DeveloperTypes lists every accepted developer type.
var DeveloperTypes = []string{
	DeveloperIndividual,
	DeveloperCommercial,
	DeveloperGovernment,
	DeveloperNonProfit,
	DeveloperPrivate,
	DeveloperIndigenous,
}

// GovernmentPrograms lists every accepted participation status.
var GovernmentPrograms = []string{GovernmentParticipating, GovernmentNotParticipating}

// BuildCanadaAnswers lists every accepted eligibility answer.
var BuildCanadaAnswers = []string{BuildCanadaYes, BuildCanadaNo, BuildCanadaUnknown}

// ReadinessPhases lists every accepted readiness phase.
var ReadinessPhases = []string{
	ReadinessResearching,
	ReadinessPlanningLong,
	ReadinessPlanningMedium,
	ReadinessPlanningShort,
	ReadinessImmediate,
}

// Provinces lists all 13 jurisdictions in alphabetical order.
var Provinces = []string{
	ProvinceAlberta,
	ProvinceBritishColumbia,
	ProvinceManitoba,
	ProvinceNewBrunswick,
	ProvinceNewfoundlandLabrador,
	ProvinceNorthwestTerritories,
	ProvinceNovaScotia,
	ProvinceNunavut,
	ProvinceOntario,
	ProvincePrinceEdwardIsland,
	ProvinceQuebec,
	ProvinceSaskatchewan,
	ProvinceYukon,
}
