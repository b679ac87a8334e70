package bookingrpc

import (
	"maps"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

func (m *CheckAvailabilityRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.VenueID)
	b = appendVarint(b, 2, uint64(m.StartEpochMillis))
	b = appendVarint(b, 3, uint64(m.EndEpochMillis))
	return b
}

func (m *CheckAvailabilityRequest) unmarshalWire(b []byte) error {
	*m = CheckAvailabilityRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &m.VenueID)
		case 2:
			return consumeVarint(typ, b, func(v uint64) { m.StartEpochMillis = int64(v) })
		case 3:
			return consumeVarint(typ, b, func(v uint64) { m.EndEpochMillis = int64(v) })
		}
		return 0
	})
}

func (m *CheckAvailabilityResponse) marshalWire() []byte {
	var b []byte
	if m.Available {
		b = appendVarint(b, 1, 1)
	}
	return b
}

func (m *CheckAvailabilityResponse) unmarshalWire(b []byte) error {
	*m = CheckAvailabilityResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeVarint(typ, b, func(v uint64) { m.Available = protowire.DecodeBool(v) })
		}
		return 0
	})
}

func (m *CreateBookingRequest) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.VenueID)
	b = appendString(b, 2, m.EventID)
	b = appendString(b, 3, m.OrganizationID)
	b = appendVarint(b, 4, uint64(m.StartEpochMillis))
	b = appendVarint(b, 5, uint64(m.EndEpochMillis))
	b = appendString(b, 6, m.Currency)
	for _, addon := range slices.Sorted(maps.Keys(m.AddonQuantities)) {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(addon))
		entry = protowire.AppendTag(entry, 2, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(int64(m.AddonQuantities[addon])))
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func (m *CreateBookingRequest) unmarshalWire(b []byte) error {
	*m = CreateBookingRequest{}
	var entryErr error
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &m.VenueID)
		case 2:
			return consumeString(typ, b, &m.EventID)
		case 3:
			return consumeString(typ, b, &m.OrganizationID)
		case 4:
			return consumeVarint(typ, b, func(v uint64) { m.StartEpochMillis = int64(v) })
		case 5:
			return consumeVarint(typ, b, func(v uint64) { m.EndEpochMillis = int64(v) })
		case 6:
			return consumeString(typ, b, &m.Currency)
		case 7:
			if typ != protowire.BytesType {
				return 0
			}
			entry, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n
			}
			var key int64
			var qty int32
			entryErr = consumeFields(entry, func(num protowire.Number, typ protowire.Type, b []byte) int {
				switch num {
				case 1:
					return consumeVarint(typ, b, func(v uint64) { key = int64(v) })
				case 2:
					return consumeVarint(typ, b, func(v uint64) { qty = int32(v) })
				}
				return 0
			})
			if entryErr != nil {
				return -1
			}
			if m.AddonQuantities == nil {
				m.AddonQuantities = make(map[int64]int32)
			}
			m.AddonQuantities[key] = qty
			return n
		}
		return 0
	})
	if entryErr != nil {
		return entryErr
	}
	return err
}

func (m *CreateBookingResponse) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.BookingID)
	b = appendString(b, 2, m.Status)
	return b
}

func (m *CreateBookingResponse) unmarshalWire(b []byte) error {
	*m = CreateBookingResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeString(typ, b, &m.BookingID)
		case 2:
			return consumeString(typ, b, &m.Status)
		}
		return 0
	})
}

func (m *CancelBookingRequest) marshalWire() []byte {
	return appendString(nil, 1, m.BookingID)
}

func (m *CancelBookingRequest) unmarshalWire(b []byte) error {
	*m = CancelBookingRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeString(typ, b, &m.BookingID)
		}
		return 0
	})
}

func (m *CancelBookingResponse) marshalWire() []byte {
	return appendString(nil, 1, m.Status)
}

func (m *CancelBookingResponse) unmarshalWire(b []byte) error {
	*m = CancelBookingResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == 1 {
			return consumeString(typ, b, &m.Status)
		}
		return 0
	})
}

// Zero values are omitted, as proto3 does for scalar fields.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// consumeFields walks the fields of b. field returns the number of bytes it
// consumed, 0 to skip the field as unknown, or a negative protowire error code.
func consumeFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m := field(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeVarint(typ protowire.Type, b []byte, set func(uint64)) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		set(v)
	}
	return n
}
