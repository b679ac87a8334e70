package bookingrpc

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls the booking service. Every call is bounded by the client
// timeout in addition to any deadline already on the caller's context.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DefaultDialOptions returns plaintext transport with OTel trace propagation.
func DefaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Dial creates a lazily-connecting client; an unreachable booking service
// surfaces as call errors, not as a startup failure.
func Dial(addr string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(addr, append(DefaultDialOptions(), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("booking grpc dial %s: %w", addr, err)
	}
	log.Printf("[BookingRPC] client targeting %s (timeout %s)", addr, timeout)
	return NewClient(conn, timeout), nil
}

func NewClient(conn *grpc.ClientConn, timeout time.Duration) *Client {
	return &Client{conn: conn, timeout: timeout}
}

func (c *Client) CheckAvailability(ctx context.Context, venueID string, start, end time.Time) (bool, error) {
	req := &CheckAvailabilityRequest{
		VenueID:          venueID,
		StartEpochMillis: start.UnixMilli(),
		EndEpochMillis:   end.UnixMilli(),
	}
	var resp CheckAvailabilityResponse
	if err := c.invoke(ctx, methodCheckAvailability, req, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}

func (c *Client) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*CreateBookingResponse, error) {
	var resp CreateBookingResponse
	if err := c.invoke(ctx, methodCreateBooking, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CancelBooking(ctx context.Context, bookingID string) (*CancelBookingResponse, error) {
	var resp CancelBookingResponse
	if err := c.invoke(ctx, methodCancelBooking, &CancelBookingRequest{BookingID: bookingID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.conn.Invoke(ctx, method, req, resp); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
