package scoring

// Bands is the shared, versioned banding table for all eight pillars.
// SSOT: thresholds live here only and are injected into the PillarScorer,
// never re-declared per component.
//
// Every pillar follows the same shape: a hard floor below which the pillar
// scores 0 and eliminates the stock, and graduated bands above the floor
// scoring 4 through 8. Points 1-3 do not exist.
type Bands struct {
	Version string

	Moat           GradedBands // ROIC, fraction
	Engine         GradedBands // 3-yr revenue CAGR, fraction
	Efficiency     GradedBands // Rule of 40, percentage points
	PricingPower   GradedBands // gross-margin industry percentile, 0-100
	CashGeneration GradedBands // FCF margin, fraction

	Fortress          FortressBands
	CapitalAllocation CapitalBands
	Durability        DurabilityBands
}

// GradedBands scores an ascending metric: higher values earn more points.
type GradedBands struct {
	Floor float64 // below this the pillar eliminates
	Five  float64
	Six   float64
	Seven float64
	Eight float64

	// TopClosed marks the 8-band boundary as inclusive (percentile-style
	// ">= 95" rather than "> 40%").
	TopClosed bool
}

// Grade maps a metric value to pillar points.
func (b GradedBands) Grade(v float64) int {
	if v < b.Floor {
		return 0
	}

	switch {
	case b.TopClosed && v >= b.Eight:
		return 8
	case !b.TopClosed && v > b.Eight:
		return 8
	case v >= b.Seven:
		return 7
	case v >= b.Six:
		return 6
	case v >= b.Five:
		return 5
	default:
		return 4
	}
}

// FortressBands scores net debt to EBITDA: lower is better, and a negative
// value means a net-cash balance sheet.
type FortressBands struct {
	Ceiling float64 // above this the pillar eliminates
	Seven   float64
	Six     float64
	Five    float64
}

// Grade maps a leverage ratio to pillar points.
func (b FortressBands) Grade(v float64) int {
	switch {
	case v < 0:
		return 8 // net cash
	case v > b.Ceiling:
		return 0
	case v <= b.Seven:
		return 7
	case v <= b.Six:
		return 6
	case v <= b.Five:
		return 5
	default:
		return 4
	}
}

// CapitalBands scores ROE combined with the provider's buyback discipline
// label.
type CapitalBands struct {
	Floor float64 // ROE below this eliminates
	Eight float64 // ROE above this with disciplined buybacks
	Seven float64 // ROE above this with disciplined or moderate buybacks
	Six   float64 // ROE above this regardless of buybacks
}

// DurabilityBands scores the market share trend against TAM growth.
type DurabilityBands struct {
	TAMFloor float64 // TAM growth below this is a shrinking market

	GainingEight float64 // gaining share, TAM above this
	GainingSeven float64
	GainingFive  float64

	StableSix  float64 // stable share, TAM above this
	StableFour float64 // stable share below this eliminates
}

// DefaultBands returns the current banding table.
func DefaultBands() Bands {
	return Bands{
		Version: "8x8-v1",

		Moat: GradedBands{
			Floor: 0.20,
			Five:  0.25,
			Six:   0.30,
			Seven: 0.35,
			Eight: 0.40,
		},
		Engine: GradedBands{
			Floor: 0.10,
			Five:  0.15,
			Six:   0.20,
			Seven: 0.25,
			Eight: 0.30,
		},
		Efficiency: GradedBands{
			Floor: 40,
			Five:  45,
			Six:   50,
			Seven: 60,
			Eight: 70,
		},
		PricingPower: GradedBands{
			Floor:     60,
			Five:      70,
			Six:       80,
			Seven:     90,
			Eight:     95,
			TopClosed: true, // top 5% is >= 95th percentile
		},
		CashGeneration: GradedBands{
			Floor: 0.12,
			Five:  0.15,
			Six:   0.20,
			Seven: 0.25,
			Eight: 0.30,
		},

		Fortress: FortressBands{
			Ceiling: 2.5,
			Seven:   0.5,
			Six:     1.0,
			Five:    1.5,
		},
		CapitalAllocation: CapitalBands{
			Floor: 0.15,
			Eight: 0.30,
			Seven: 0.25,
			Six:   0.20,
		},
		Durability: DurabilityBands{
			TAMFloor:     0,
			GainingEight: 0.20,
			GainingSeven: 0.15,
			GainingFive:  0.10,
			StableSix:    0.20,
			StableFour:   0.10,
		},
	}
}
