// Package remote is the record store backend that talks to the stampcard
// record service over gRPC. User records live on the server; the session is
// kept only in process memory and is lost on restart.
package remote

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/client/store"
	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/dmitrijs2005/stampcard/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const defaultTimeout = 5 * time.Second

type Conn struct {
	cc      *grpc.ClientConn
	client  rpc.RecordServiceClient
	timeout time.Duration

	mu      sync.Mutex
	session models.Session
}

var _ store.Conn = (*Conn)(nil)

func withSchemaVersion(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SchemaVersionHeaderName, strconv.Itoa(common.SchemaVersion))
	return metadata.NewOutgoingContext(ctx, md)
}

func schemaVersionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withSchemaVersion(ctx), method, req, reply, cc, opts...)
}

// Opener returns a store.OpenFunc that dials addr and pings the service.
// Extra dial options are appended after the defaults (tests pass a bufconn
// dialer).
func Opener(addr string, timeout time.Duration, opts ...grpc.DialOption) store.OpenFunc {
	return func(ctx context.Context) (store.Conn, error) {
		c, err := Open(ctx, addr, timeout, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func Open(ctx context.Context, addr string, timeout time.Duration, opts ...grpc.DialOption) (*Conn, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(schemaVersionInterceptor),
	}, opts...)

	cc, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	c := &Conn{cc: cc, client: rpc.NewRecordServiceClient(cc), timeout: timeout}
	if err := c.Ping(ctx); err != nil {
		_ = cc.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}
	return c, nil
}

func (c *Conn) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Conn) Ping(ctx context.Context) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	if _, err := c.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Conn) GetUser(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.client.GetUser(ctx, wrapperspb.String(username))
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}

	u, err := rpc.UserFromStruct(resp)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Conn) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	resp, err := c.client.ListUsers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return rpc.UsersFromList(resp)
}

func (c *Conn) PutUser(ctx context.Context, u models.User) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	if _, err := c.client.PutUser(ctx, rpc.UserToStruct(u)); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Conn) DeleteUser(ctx context.Context, username string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	if _, err := c.client.DeleteUser(ctx, wrapperspb.String(username)); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Conn) ClearUsers(ctx context.Context) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	if _, err := c.client.ClearUsers(ctx, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Conn) GetSession(ctx context.Context) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, nil
}

func (c *Conn) PutSession(ctx context.Context, s models.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	return nil
}

func (c *Conn) Close() error {
	return c.cc.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrNetwork, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrStorageConflict, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
