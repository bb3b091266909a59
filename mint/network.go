package mint

const (
	devnetEndpoint  = "https://api.devnet.solana.com"
	mainnetEndpoint = "https://api.mainnet-beta.solana.com"
)

// EndpointForNetwork выбирает RPC-эндпоинт по идентификатору сети.
// Всё, что не "mainnet", уходит в devnet: случайный опечатанный
// идентификатор не должен отправить минт в основную сеть.
func EndpointForNetwork(network string) string {
	if network == "mainnet" {
		return mainnetEndpoint
	}
	return devnetEndpoint
}
