package entity

// DefaultNetwork is selected on startup when the configuration does not say otherwise.
const DefaultNetwork = "bsc"

// DefaultAddress is the address pre-filled in the address input.
const DefaultAddress = "0x644e357b0DC7f234a1F0478dE7FE8790b94B6F63"

// KnownNetworks lists the Bitquery EthereumNetwork identifiers offered by the selector, in display order.
var KnownNetworks = []string{ //nolint:gochecknoglobals // fixed enumeration
	"bsc",
	"ethereum",
	"ethclassic",
	"ethclassic_reorg",
	"celo_alfajores",
	"celo_baklava",
	"celo_rc1",
	"bsc_testnet",
	"goerli",
	"matic",
	"velas",
	"velas_testnet",
	"klaytn",
	"avalanche",
	"fantom",
	"moonbeam",
}

// IsKnownNetwork reports whether identifier is one of the given networks.
func IsKnownNetwork(networks []string, identifier string) bool {
	for _, n := range networks {
		if n == identifier {
			return true
		}
	}
	return false
}
