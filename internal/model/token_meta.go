package model

// DefaultDecimals is assumed for tokens whose metadata has not been
// fetched. Display helpers take explicit decimals so non-18-decimal
// tokens render correctly once metadata is known.
const DefaultDecimals uint8 = 18

// TokenMeta captures ERC20 metadata used for display.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}
