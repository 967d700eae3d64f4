package catalog

import "encoding/json"

const docBase = "https://docs.metamask.io/wallet/reference/json-rpc-methods/"

var allWalletTypes = []WalletType{WalletTypeEOA, WalletTypeSmartContract}

var categories = []CategoryInfo{
	{ID: CategoryWallet, Name: "Wallet", Icon: "Wallet"},
	{ID: CategoryNetwork, Name: "Network", Icon: "Globe"},
	{ID: CategoryTransaction, Name: "Transactions", Icon: "ArrowRightLeft"},
	{ID: CategorySigning, Name: "Signing", Icon: "PenTool"},
	{ID: CategoryContract, Name: "Contracts", Icon: "FileCode"},
	{ID: CategoryAsset, Name: "Assets", Icon: "Coins"},
	{ID: CategoryDeprecated, Name: "Deprecated", Icon: "AlertTriangle"},
}

// mailTypedData EIP-712 示例数据
const mailTypedData = `{"types":{"EIP712Domain":[{"name":"name","type":"string"},{"name":"version","type":"string"},{"name":"chainId","type":"uint256"},{"name":"verifyingContract","type":"address"}],"Person":[{"name":"name","type":"string"},{"name":"wallet","type":"address"}],"Mail":[{"name":"from","type":"Person"},{"name":"to","type":"Person"},{"name":"contents","type":"string"}]},"primaryType":"Mail","domain":{"name":"Flow EVM Mail","version":"1","chainId":747,"verifyingContract":"0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"},"message":{"from":{"name":"Cow","wallet":"` + PlaceholderAddress + `"},"to":{"name":"Bob","wallet":"0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"},"contents":"Hello, Bob!"}}`

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func method(id, name, description string, category Category, params string, tests ...Test) Method {
	return Method{
		ID:            id,
		Name:          name,
		Method:        id,
		Description:   description,
		Category:      category,
		WalletTypes:   allWalletTypes,
		DocURL:        docBase + id + "/",
		ExampleParams: raw(params),
		Tests:         tests,
	}
}

var methods = []Method{
	// 钱包连接与账户
	method("eth_requestAccounts", "Request Accounts", "Request user accounts from wallet", CategoryWallet, `[]`),
	method("eth_accounts", "Get Accounts", "Get currently connected accounts", CategoryWallet, `[]`),
	method("eth_coinbase", "Get Coinbase", "Get the coinbase address", CategoryWallet, `[]`),
	method("eth_chainId", "Chain ID", "Get current chain ID", CategoryNetwork, `[]`),
	method("net_version", "Network Version", "Get the network version ID", CategoryNetwork, `[]`),

	// 网络
	method("wallet_switchEthereumChain", "Switch Chain", "Switch to a different Ethereum chain", CategoryNetwork,
		`[{"chainId":"0x2eb"}]`),
	method("wallet_addEthereumChain", "Add Chain", "Add a new Ethereum chain", CategoryNetwork,
		`[{"chainId":"0x2eb","chainName":"EVM on Flow","nativeCurrency":{"name":"Flow","symbol":"FLOW","decimals":18},"rpcUrls":["https://mainnet.evm.nodes.onflow.org"],"blockExplorerUrls":["https://evm.flowscan.io"]}]`),

	// 交易
	method("eth_sendTransaction", "Send Transaction", "Send a transaction", CategoryTransaction,
		`[{"to":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","value":"0x16345785d8a0000","gas":"0x5208"}]`,
		Test{
			ID:          "legacy-eip155",
			Label:       "Legacy transfer (EIP-155)",
			Description: "Basic legacy transaction using a fixed gas price (type 0).",
			Mode:        ModeSignLegacy,
			Params:      raw(`[{"from":"` + PlaceholderAddress + `","to":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","value":"0x2386f26fc10000","gas":"0x5208","gasPrice":"0x3b9aca00","nonce":"0x0","chainId":"0x2eb"}]`),
		},
		Test{
			ID:          "dynamic-fee-eip1559",
			Label:       "Dynamic fee transfer (EIP-1559)",
			Description: "Type-2 transaction with max fee and priority fee for dynamic gas pricing.",
			Mode:        ModeSignEIP1559,
			Params:      raw(`[{"from":"` + PlaceholderAddress + `","to":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","value":"0x2386f26fc10000","gas":"0x5208","maxPriorityFeePerGas":"0x59682f00","maxFeePerGas":"0x59682f00","nonce":"0x0","chainId":"0x2eb","type":"0x2"}]`),
		},
	),
	method("eth_estimateGas", "Estimate Gas", "Estimate gas for a transaction", CategoryTransaction,
		`[{"to":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","value":"0x16345785d8a0000"}]`),
	method("eth_getTransactionByHash", "Get Transaction", "Get transaction by hash", CategoryTransaction,
		`["0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"]`),

	// 签名
	method("eth_sign", "⚠️ ETH Sign (Deprecated)", "⚠️ DEPRECATED: Sign data with eth_sign (high security risk - testing only)", CategoryDeprecated,
		`["`+PlaceholderAddress+`","0x68656c6c6f20776f726c64"]`,
		Test{
			ID:          "eth-sign-hex",
			Label:       "Hex-encoded hello world",
			Description: "Demonstrates basic usage with raw hex data.",
			Mode:        ModeEthSign,
			Params:      raw(`["` + PlaceholderAddress + `","0x68656c6c6f20776f726c64"]`),
		},
		Test{
			ID:          "eth-sign-json-hex",
			Label:       "Typed JSON encoded as hex",
			Description: "Signs JSON payload that has been converted to UTF-8 hex.",
			Mode:        ModeEthSign,
			Params:      raw(`["` + PlaceholderAddress + `","0x7b22617070223a2022466c6f772045564d20436c69656e74222c202274736d70223a2022323032342d30332d32355431323a30303a30305a227d"]`),
		},
	),
	method("personal_sign", "Personal Sign", "Sign a message with personal_sign", CategorySigning,
		`["Hello, Flow EVM!","`+PlaceholderAddress+`"]`,
		Test{
			ID:          "personal-sign-text",
			Label:       "Simple text message",
			Description: "Plain UTF-8 string that wallets will display directly.",
			Mode:        ModePersonal,
			Params:      raw(`["Hello, Flow EVM!","` + PlaceholderAddress + `"]`),
		},
		Test{
			ID:          "personal-sign-json",
			Label:       "JSON payload message",
			Description: "Example sign-in payload encoded as JSON.",
			Mode:        ModePersonal,
			Params:      raw(`["{\n  \"domain\": \"flow-evm.dev\",\n  \"statement\": \"Sign in to Flow EVM tools\",\n  \"issuedAt\": \"2024-03-25T12:00:00Z\"\n}","` + PlaceholderAddress + `"]`),
		},
		Test{
			ID:          "personal-sign-hex",
			Label:       "Hex-encoded message",
			Description: "Raw bytes supplied as a hex string (0x-prefixed).",
			Mode:        ModePersonal,
			Params:      raw(`["0x48656c6c6f2c20466c6f772045564d21","` + PlaceholderAddress + `"]`),
		},
	),
	method("personal_ecRecover", "Personal EC Recover", "Recover address from signature", CategorySigning,
		`["Hello, Flow EVM!","0x...signature..."]`),
	method("eth_signTypedData", "⚠️ Sign Typed Data v1 (Legacy)", "⚠️ LEGACY: Sign structured data v1 (use v4 instead)", CategoryDeprecated,
		`[[{"type":"string","name":"message","value":"Hello Flow EVM!"}],"`+PlaceholderAddress+`"]`),
	method("eth_signTypedData_v3", "⚠️ Sign Typed Data v3 (Legacy)", "⚠️ LEGACY: Sign structured data v3 (use v4 instead)", CategoryDeprecated,
		`["`+PlaceholderAddress+`",`+mailTypedData+`]`),
	method("eth_signTypedData_v4", "Sign Typed Data v4", "✅ RECOMMENDED: Sign structured data v4 (current standard)", CategorySigning,
		`["`+PlaceholderAddress+`",`+mailTypedData+`]`),

	// 合约
	method("eth_call", "Contract Call", "Call contract method (read-only)", CategoryContract,
		`[{"to":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","data":"0x06fdde03"},"latest"]`),
	method("eth_getCode", "Get Contract Code", "Get contract bytecode", CategoryContract,
		`["0x742d35cc6634c0532925a3b8d50d4c0332b9d002","latest"]`),

	// 资产
	method("wallet_watchAsset", "Watch Asset", "Add token to wallet", CategoryAsset,
		`[{"type":"ERC20","options":{"address":"0x742d35cc6634c0532925a3b8d50d4c0332b9d002","symbol":"FLOW","decimals":18,"image":"https://cryptologos.cc/logos/flow-flow-logo.png"}}]`),
	method("eth_getBalance", "Get Balance", "Get account balance", CategoryAsset,
		`["0x742d35cc6634c0532925a3b8d50d4c0332b9d002","latest"]`),
}
