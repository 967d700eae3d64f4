package connection

// Status 连接状态
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// State 派生的连接状态，每次按需计算
type State struct {
	Method       Method `json:"method"`
	Status       Status `json:"status"`
	Connected    bool   `json:"isConnected"`
	Address      string `json:"address,omitempty"`
	ShortAddress string `json:"shortAddress,omitempty"`
}

// newState 根据地址构造状态，地址为空时视为未连接
func newState(m Method, address string, connecting bool) State {
	s := State{Method: m, Status: StatusDisconnected}
	switch {
	case address != "":
		s.Status = StatusConnected
		s.Connected = true
		s.Address = address
		s.ShortAddress = ShortAddress(address)
	case connecting:
		s.Status = StatusConnecting
	}
	return s
}

// ShortAddress 返回 0x1234...abcd 形式的缩略地址
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
