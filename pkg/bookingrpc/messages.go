// Package bookingrpc is the gRPC contract of the venue booking service
// described by proto/booking.proto: request/response messages encoded in the
// protobuf wire format, a client and the service descriptor used to serve it.
package bookingrpc

const ServiceName = "booking.v1.BookingService"

const (
	methodCheckAvailability = "/" + ServiceName + "/CheckAvailability"
	methodCreateBooking     = "/" + ServiceName + "/CreateBooking"
	methodCancelBooking     = "/" + ServiceName + "/CancelBooking"
)

type CheckAvailabilityRequest struct {
	VenueID          string
	StartEpochMillis int64
	EndEpochMillis   int64
}

type CheckAvailabilityResponse struct {
	Available bool
}

type CreateBookingRequest struct {
	VenueID          string
	EventID          string
	OrganizationID   string
	StartEpochMillis int64
	EndEpochMillis   int64
	Currency         string
	AddonQuantities  map[int64]int32
}

type CreateBookingResponse struct {
	BookingID string
	Status    string
}

type CancelBookingRequest struct {
	BookingID string
}

type CancelBookingResponse struct {
	Status string
}
