// internal/service/order/domain/state.go
package domain

// State 定义了订单的生命周期状态
type State string

const (
	StatePending    State = "PENDING"    // 已创建，等待确认（支付）
	StateConfirmed  State = "CONFIRMED"  // 已确认，优惠券核销在进入此状态时触发
	StateProcessing State = "PROCESSING" // 备货中
	StateShipped    State = "SHIPPED"    // 已发货
	StateDelivered  State = "DELIVERED"  // 已送达
	StateCancelled  State = "CANCELLED"  // 已取消（仅限确认前后）
	StateRefunded   State = "REFUNDED"   // 已退款（仅限送达后）
)

// transitions 描述了合法的状态流转。
var transitions = map[State][]State{
	StatePending:    {StateConfirmed, StateCancelled},
	StateConfirmed:  {StateProcessing, StateCancelled},
	StateProcessing: {StateShipped},
	StateShipped:    {StateDelivered},
	StateDelivered:  {StateRefunded},
}

// CanTransition 返回从 from 到 to 的流转是否合法。
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
