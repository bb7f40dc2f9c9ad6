package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricActionApplied      = "WizardActionApplied"
	MetricActionRejected     = "WizardActionRejected"
	MetricInvariantViolation = "WizardInvariantViolation"
	MetricDraftCreated       = "DraftCreated"
	MetricCheckoutStarted    = "CheckoutStarted"
	MetricCheckoutCompleted  = "CheckoutCompleted"
	MetricSiteProvisioned    = "SiteProvisioned"
	MetricAvailabilityCheck  = "AvailabilityCheck"
	MetricUploadStored       = "UploadStored"
	MetricAPILatency         = "APILatency"
	MetricAPIRequestCount    = "APIRequestCount"
	MetricExternalAPIFailure = "ExternalAPIFailure"

	// Dimension Keys
	DimPlan       = "Plan"
	DimActionType = "ActionType"
	DimEndpoint   = "Endpoint"
	DimProvider   = "Provider"
	DimStatus     = "Status"
	DimMethod     = "Method"

	// Metric Namespace
	MetricNamespace = "SiteWizard"
)
