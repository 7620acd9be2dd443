package grpcledger

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

// Struct numbers are float64; integers above 2^53 cannot round-trip.
const maxExactInt = 1 << 53

func encodeEntity(e entity.Entity) (*structpb.Struct, error) {
	for _, v := range []int64{e.ID, e.Generation, e.BirthTime, e.ParentA, e.ParentB} {
		if v > maxExactInt || v < -maxExactInt {
			return nil, fmt.Errorf("grpcledger: value %d not representable", v)
		}
	}
	id, err := e.CID()
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewNumberValue(float64(e.ID)),
		"genes":      structpb.NewStringValue(e.Genes),
		"generation": structpb.NewNumberValue(float64(e.Generation)),
		"birthTime":  structpb.NewNumberValue(float64(e.BirthTime)),
		"parentA":    structpb.NewNumberValue(float64(e.ParentA)),
		"parentB":    structpb.NewNumberValue(float64(e.ParentB)),
		"cid":        structpb.NewStringValue(id.String()),
	}}, nil
}

// decodeEntity returns the record and the fingerprint shipped with it.
func decodeEntity(s *structpb.Struct) (entity.Entity, string, error) {
	f := s.GetFields()
	var e entity.Entity
	var err error
	if e.ID, err = intField(f, "id", true); err != nil {
		return entity.Entity{}, "", err
	}
	if e.Generation, err = intField(f, "generation", true); err != nil {
		return entity.Entity{}, "", err
	}
	if e.BirthTime, err = intField(f, "birthTime", false); err != nil {
		return entity.Entity{}, "", err
	}
	if e.ParentA, err = intField(f, "parentA", false); err != nil {
		return entity.Entity{}, "", err
	}
	if e.ParentB, err = intField(f, "parentB", false); err != nil {
		return entity.Entity{}, "", err
	}
	genes, ok := f["genes"]
	if !ok {
		return entity.Entity{}, "", fmt.Errorf("%w: missing genes", ledger.ErrInvalidRecord)
	}
	if _, isString := genes.GetKind().(*structpb.Value_StringValue); !isString {
		return entity.Entity{}, "", fmt.Errorf("%w: genes is not a string", ledger.ErrInvalidRecord)
	}
	e.Genes = genes.GetStringValue()
	return e, f["cid"].GetStringValue(), nil
}

func intField(f map[string]*structpb.Value, name string, required bool) (int64, error) {
	v, ok := f[name]
	if !ok {
		if required {
			return 0, fmt.Errorf("%w: missing %s", ledger.ErrInvalidRecord, name)
		}
		return 0, nil
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, fmt.Errorf("%w: %s is not a number", ledger.ErrInvalidRecord, name)
	}
	n := v.GetNumberValue()
	if n != math.Trunc(n) || math.Abs(n) > maxExactInt {
		return 0, fmt.Errorf("%w: %s is not an integer", ledger.ErrInvalidRecord, name)
	}
	return int64(n), nil
}
