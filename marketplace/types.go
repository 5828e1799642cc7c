package marketplace

type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Creator struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type TokenCounts struct {
	Listed int `json:"listed"`
	Total  int `json:"total"`
}

type Collection struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Media       Media       `json:"media"`
	FloorPrice  string      `json:"floorPrice"`
	Creator     Creator     `json:"creator"`
	TokenCounts TokenCounts `json:"tokenCounts"`
}

// Token is a marketplace listing as reported by the indexer. Price is in base
// units of the settlement denom.
type Token struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	RarityOrder int    `json:"rarityOrder"`
	Price       string `json:"price"`
	Media       Media  `json:"media"`
}

// Ask is an active listing as stored by the marketplace contract itself.
type Ask struct {
	Collection string `json:"collection"`
	TokenID    int    `json:"token_id"`
	Seller     string `json:"seller"`
	Price      string `json:"price"`
	IsActive   bool   `json:"is_active"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}
