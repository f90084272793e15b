package checkout

type Provider string

const (
	ProviderNone    Provider = ""
	ProviderFree    Provider = "free"
	ProviderPaypal  Provider = "paypal"
	ProviderCentili Provider = "centili"
	ProviderXsolla  Provider = "xsolla"
	// ProviderShopify is the restricted-platform provider. Orders holding
	// restricted products can only be paid through it.
	ProviderShopify Provider = "shopify"
)

// transactionID is the provider marker written when checkout begins.
func transactionID(p Provider, reference string) string {
	if p == ProviderShopify {
		return string(p) + "-" + reference
	}
	return string(p)
}

func failedTransactionID(p Provider) string {
	return string(p) + "-failed"
}
