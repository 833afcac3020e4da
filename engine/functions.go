package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/vec/search"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterColorFunctions registers rgb_dist2 and rgb_l2 with the driver so
// they are available on connections opened after this call. Existing open
// connections will not see new functions.
//
//	rgb_dist2(a BLOB, b BLOB) -> INTEGER squared distance
//	rgb_l2(a BLOB, b BLOB)    -> REAL Euclidean distance
func RegisterColorFunctions() error {
	var err error
	registerOnce.Do(func() {
		if err = sqlite.RegisterDeterministicScalarFunction("rgb_dist2", 2, rgbDist2Impl); err != nil {
			return
		}
		err = sqlite.RegisterDeterministicScalarFunction("rgb_l2", 2, rgbL2Impl)
	})
	return err
}

func rgbDist2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := colorArgs("rgb_dist2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	var sum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		sum += d * d
	}
	return sum, nil
}

func rgbL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := colorArgs("rgb_l2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	va := make(search.Float32s, len(a))
	vb := make([]float32, len(b))
	for i := range a {
		va[i] = float32(a[i])
		vb[i] = float32(b[i])
	}
	return float64(va.EuclideanDistance(vb)), nil
}

// colorArgs decodes two 3-byte colour BLOBs; nil results mean SQL NULL.
func colorArgs(name string, args []driver.Value) ([]byte, []byte, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asColor(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	b, err := asColor(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, b, nil
}

// asColor accepts a 3-byte colour BLOB; nil stands for SQL NULL.
func asColor(arg driver.Value) ([]byte, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) != 3 {
			return nil, fmt.Errorf("invalid colour blob length %d", len(v))
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T for colour; want BLOB", arg)
	}
}
