package domain

import "math"

// Seat tier names
const (
	TierVIP     = "VIP"
	TierRegular = "Regular"
)

// VIPShareNumerator / VIPShareDenominator is the VIP share of a general capacity
const (
	VIPShareNumerator   = 10
	VIPShareDenominator = 100
)

// MaxCapacity is the largest total an event may hold; seat columns are 32-bit
const MaxCapacity = math.MaxInt32

// SeatMap is the per-tier capacity of an event. VIP + Regular always equals Total.
type SeatMap struct {
	VIP     int `json:"VIP"`
	Regular int `json:"Regular"`
	Total   int `json:"Total"`
}

// CapacityInput is the capacity requested at event creation: either a General
// total to be split, or a pre-split VIP/Regular pair.
type CapacityInput struct {
	General *int `json:"General,omitempty"`
	VIP     *int `json:"VIP,omitempty"`
	Regular *int `json:"Regular,omitempty"`
}

// SplitCapacity derives the tier pools from a total: VIP = ceil(10% of total).
func SplitCapacity(total int) (SeatMap, error) {
	if total < 0 || total > MaxCapacity {
		return SeatMap{}, ErrInvalidCapacity
	}
	vip := (total*VIPShareNumerator + VIPShareDenominator - 1) / VIPShareDenominator
	return SeatMap{VIP: vip, Regular: total - vip, Total: total}, nil
}

// NewSeatMap resolves a capacity input. A General total is split; a pre-split
// pair passes through with Total recomputed. No capacity yields ok=false so the
// caller keeps whatever seat map it already has.
func NewSeatMap(in *CapacityInput) (seatMap SeatMap, ok bool, err error) {
	if in == nil {
		return SeatMap{}, false, nil
	}

	if in.General != nil {
		sm, err := SplitCapacity(*in.General)
		return sm, err == nil, err
	}

	if in.VIP == nil && in.Regular == nil {
		return SeatMap{}, false, nil
	}

	var vip, regular int
	if in.VIP != nil {
		vip = *in.VIP
	}
	if in.Regular != nil {
		regular = *in.Regular
	}
	if vip < 0 || regular < 0 || vip > MaxCapacity-regular {
		return SeatMap{}, false, ErrInvalidCapacity
	}
	return SeatMap{VIP: vip, Regular: regular, Total: vip + regular}, true, nil
}
