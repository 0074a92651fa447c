package signal

// LineSpeed as a posted speed means the line speed applies again.
const LineSpeed = 999

// SpeedInfo is a speed limit in km/h for passenger and freight trains.
type SpeedInfo struct {
	Pass    float64 `yaml:"pass" json:"pass"`
	Freight float64 `yaml:"freight" json:"freight"`
	// Warning marks an advisory limit.
	Warning bool `yaml:"warning" json:"warning"`
}

// NoSpeed means no limit is set.
var NoSpeed = SpeedInfo{Pass: -1, Freight: -1}

func (s SpeedInfo) Set() bool {
	return s.Pass >= 0 || s.Freight >= 0
}
