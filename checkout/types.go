package checkout

// Asset is one entry of the static configured asset list.
type Asset struct {
	Denom       string
	Symbol      string
	ChainID     string
	CoinGeckoID string
	Exponent    int32
}

// Purchase identifies the listing to buy and the price to pay, in base units
// of the settlement denom.
type Purchase struct {
	CollectionAddress string
	TokenID           string
	PriceAmount       string
}

// Receipt carries the tx hashes of a completed submission, in execution
// order.
type Receipt struct {
	HopTxHashes    []string
	PurchaseTxHash string
}

type submissionState string

const (
	stateIdle               submissionState = "idle"
	stateAwaitingWalletAuth submissionState = "awaiting_wallet_auth"
	stateSigning            submissionState = "signing"
	stateBroadcasting       submissionState = "broadcasting"
	stateConfirming         submissionState = "confirming_balance"
	statePurchasing         submissionState = "purchase_broadcasting"
	stateDone               submissionState = "done"
	stateFailed             submissionState = "failed"
)
