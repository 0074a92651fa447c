package signal

import "fmt"

// Function is what a head is for.
type Function int

const (
	FunctionNormal Function = iota
	FunctionDistance
	FunctionRepeater
	FunctionShunting
	FunctionInfo
	FunctionSpeed
	FunctionAlert
	FunctionUnknown
	NumFunctions
)

var functionNames = [NumFunctions]string{
	FunctionNormal:   "normal",
	FunctionDistance: "distance",
	FunctionRepeater: "repeater",
	FunctionShunting: "shunting",
	FunctionInfo:     "info",
	FunctionSpeed:    "speed",
	FunctionAlert:    "alert",
	FunctionUnknown:  "unknown",
}

func (f Function) String() string {
	if f < 0 || f >= NumFunctions {
		panic(fmt.Sprintf("unknown Function %d", int(f)))
	}
	return functionNames[f]
}

func (f Function) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Function) UnmarshalText(text []byte) error {
	for k, name := range functionNames {
		if name == string(text) {
			*f = Function(k)
			return nil
		}
	}
	return fmt.Errorf("unknown function %q", text)
}
