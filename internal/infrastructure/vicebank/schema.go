package vicebank

// Wire shapes exchanged with the server. Response fields are pointers so
// that a missing field fails `required` even when its zero value would be
// legitimate (0 tokens, an empty unit).

const isoLayout = "2006-01-02T15:04:05Z07:00"

type userWire struct {
	ID            *string  `json:"id"            validate:"required"`
	UserID        *string  `json:"userId"        validate:"required"`
	Name          *string  `json:"name"          validate:"required"`
	CurrentTokens *float64 `json:"currentTokens" validate:"required"`
}

type actionWire struct {
	ID                   *string  `json:"id"                   validate:"required"`
	VBUserID             *string  `json:"vbUserId"             validate:"required"`
	Name                 *string  `json:"name"                 validate:"required"`
	ConversionUnit       *string  `json:"conversionUnit"       validate:"required"`
	InputQuantity        *float64 `json:"inputQuantity"        validate:"required"`
	TokensEarnedPerInput *float64 `json:"tokensEarnedPerInput" validate:"required"`
	MinDeposit           *float64 `json:"minDeposit"           validate:"required"`
	MaxDeposit           *float64 `json:"maxDeposit"           validate:"required"`
}

type taskWire struct {
	ID                   *string  `json:"id"                   validate:"required"`
	VBUserID             *string  `json:"vbUserId"             validate:"required"`
	Name                 *string  `json:"name"                 validate:"required"`
	Frequency            *string  `json:"frequency"            validate:"required,oneof=daily weekly monthly"`
	TokensEarnedPerInput *float64 `json:"tokensEarnedPerInput" validate:"required"`
}

type rewardWire struct {
	ID       *string  `json:"id"       validate:"required"`
	VBUserID *string  `json:"vbUserId" validate:"required"`
	Name     *string  `json:"name"     validate:"required"`
	Price    *float64 `json:"price"    validate:"required"`
}

type actionDepositWire struct {
	ID              *string     `json:"id"              validate:"required"`
	VBUserID        *string     `json:"vbUserId"        validate:"required"`
	Date            *string     `json:"date"            validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DepositQuantity *float64    `json:"depositQuantity" validate:"required"`
	Action          *actionWire `json:"action"          validate:"required"`
}

type taskDepositWire struct {
	ID       *string   `json:"id"       validate:"required"`
	VBUserID *string   `json:"vbUserId" validate:"required"`
	Date     *string   `json:"date"     validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Task     *taskWire `json:"task"     validate:"required"`
}

type purchaseWire struct {
	ID                *string     `json:"id"                validate:"required"`
	VBUserID          *string     `json:"vbUserId"          validate:"required"`
	Date              *string     `json:"date"              validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	PurchasedQuantity *int        `json:"purchasedQuantity" validate:"required"`
	Reward            *rewardWire `json:"reward"            validate:"required"`
}

type currentTokensWire struct {
	CurrentTokens *float64 `json:"currentTokens" validate:"required"`
}

// --- Add payloads: everything except server-assigned fields ---

type newUserRequest struct {
	Name          string  `json:"name"`
	CurrentTokens float64 `json:"currentTokens"`
}

type newActionRequest struct {
	VBUserID             string  `json:"vbUserId"`
	Name                 string  `json:"name"`
	ConversionUnit       string  `json:"conversionUnit"`
	InputQuantity        float64 `json:"inputQuantity"`
	TokensEarnedPerInput float64 `json:"tokensEarnedPerInput"`
	MinDeposit           float64 `json:"minDeposit"`
	MaxDeposit           float64 `json:"maxDeposit"`
}

type newTaskRequest struct {
	VBUserID             string  `json:"vbUserId"`
	Name                 string  `json:"name"`
	Frequency            string  `json:"frequency"`
	TokensEarnedPerInput float64 `json:"tokensEarnedPerInput"`
}

type newRewardRequest struct {
	VBUserID string  `json:"vbUserId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

type newActionDepositRequest struct {
	VBUserID        string     `json:"vbUserId"`
	Date            string     `json:"date"`
	DepositQuantity float64    `json:"depositQuantity"`
	Action          actionWire `json:"action"`
}

type newTaskDepositRequest struct {
	VBUserID string   `json:"vbUserId"`
	Date     string   `json:"date"`
	Task     taskWire `json:"task"`
}

type newPurchaseRequest struct {
	VBUserID          string     `json:"vbUserId"`
	Date              string     `json:"date"`
	PurchasedQuantity int        `json:"purchasedQuantity"`
	Reward            rewardWire `json:"reward"`
}
