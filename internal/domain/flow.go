package domain

// Flow identifies an authentication workflow.
type Flow string

const (
	FlowLogin         Flow = "login"
	FlowRegistration  Flow = "registration"
	FlowFederated     Flow = "federated"
	FlowPasswordReset Flow = "password_reset"
)

// FlowState is a step within an authentication workflow. Every flow starts
// in Idle and returns to Idle on failure; resubmission is allowed
// immediately.
type FlowState string

const (
	FlowIdle                 FlowState = "idle"
	FlowSubmitting           FlowState = "submitting"
	FlowCreatingAccount      FlowState = "creating_account"
	FlowWritingProfile       FlowState = "writing_profile"
	FlowExchangingCredential FlowState = "exchanging_credential"
	FlowCheckingProfile      FlowState = "checking_profile_exists"
	FlowCreatingProfile      FlowState = "creating_profile"
	FlowSucceeded            FlowState = "succeeded"
	FlowFailed               FlowState = "failed"
)
