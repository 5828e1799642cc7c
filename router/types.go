package router

import "encoding/json"

// AssetRef identifies an asset on a specific chain, as the routing service
// understands it.
type AssetRef struct {
	Denom   string `json:"denom"`
	ChainID string `json:"chainId"`
}

// Hop is one IBC leg of a route, before or after the swap.
type Hop struct {
	Port       string `json:"port"`
	Channel    string `json:"channel"`
	ChainID    string `json:"chainId"`
	PFMEnabled bool   `json:"pfmEnabled"`
	DestDenom  string `json:"destDenom"`
}

type RouteRequest struct {
	AmountIn                  string   `json:"amountIn"`
	SourceAsset               AssetRef `json:"sourceAsset"`
	DestAsset                 AssetRef `json:"destAsset"`
	CumulativeAffiliateFeeBps string   `json:"cumulativeAffiliateFeeBps"`
}

// RouteResponse is the quote: how much of the destination asset the requested
// input nets, and the hops/chains the transfer touches. The userSwap and
// feeSwap payloads are venue-specific and passed back to the message builder
// untouched.
type RouteResponse struct {
	SourceAsset       AssetRef        `json:"sourceAsset"`
	DestAsset         AssetRef        `json:"destAsset"`
	AmountIn          string          `json:"amountIn"`
	UserSwap          json.RawMessage `json:"userSwap"`
	UserSwapAmountOut string          `json:"userSwapAmountOut"`
	FeeSwap           json.RawMessage `json:"feeSwap,omitempty"`
	PreSwapHops       []Hop           `json:"preSwapHops"`
	PostSwapHops      []Hop           `json:"postSwapHops"`
	ChainIDs          []string        `json:"chainIds"`
}

type Affiliate struct {
	BasisPointsFee string `json:"basisPointsFee"`
	Address        string `json:"address"`
}

type MsgsRequest struct {
	PreSwapHops  []Hop `json:"preSwapHops"`
	PostSwapHops []Hop `json:"postSwapHops"`

	ChainIDsToAddresses map[string]string `json:"chainIdsToAddresses"`

	SourceAsset AssetRef `json:"sourceAsset"`
	DestAsset   AssetRef `json:"destAsset"`
	AmountIn    string   `json:"amountIn"`

	UserSwap                         json.RawMessage `json:"userSwap"`
	UserSwapAmountOut                string          `json:"userSwapAmountOut"`
	UserSwapSlippageTolerancePercent string          `json:"userSwapSlippageTolerancePercent"`

	FeeSwap    json.RawMessage `json:"feeSwap,omitempty"`
	Affiliates []Affiliate     `json:"affiliates"`
}

// NewMsgsRequest binds a quoted route to the user's addresses and a slippage
// tolerance, producing the message-builder request.
func NewMsgsRequest(route *RouteResponse, addresses map[string]string, slippagePercent string) MsgsRequest {
	return MsgsRequest{
		PreSwapHops:                      route.PreSwapHops,
		PostSwapHops:                     route.PostSwapHops,
		ChainIDsToAddresses:              addresses,
		SourceAsset:                      route.SourceAsset,
		DestAsset:                        route.DestAsset,
		AmountIn:                         route.AmountIn,
		UserSwap:                         route.UserSwap,
		UserSwapAmountOut:                route.UserSwapAmountOut,
		UserSwapSlippageTolerancePercent: slippagePercent,
		FeeSwap:                          route.FeeSwap,
		Affiliates:                       []Affiliate{},
	}
}

// MultiHopMsg is one chain-native message of the plan. Msg is the
// JSON-encoded payload of the type named by MsgTypeURL, to be signed and
// broadcast on ChainID.
type MultiHopMsg struct {
	ChainID    string   `json:"chainId"`
	Path       []string `json:"path"`
	Msg        string   `json:"msg"`
	MsgTypeURL string   `json:"msgTypeUrl"`
}

// MsgsResponse is the ordered message plan. Messages must be executed in the
// order given: each later hop spends the funds delivered by the previous one.
type MsgsResponse struct {
	Requested []MultiHopMsg `json:"requested"`
}
