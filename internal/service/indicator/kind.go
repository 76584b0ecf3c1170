package indicator

// Kind 信号类型
type Kind string

func (k Kind) ToString() string {
	return string(k)
}

const (
	KindTDBuy9     Kind = "td_buy9"
	KindTDSell9    Kind = "td_sell9"
	KindBullishDiv Kind = "macd_bull_div"
	KindBearishDiv Kind = "macd_bear_div"
	KindDepth      Kind = "depth"
	KindWall       Kind = "wall"
	KindDivergence Kind = "divergence"
)
