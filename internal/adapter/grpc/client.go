package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client is a thin EconomyService client used by resourcectl
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// Dial connects to an EconomyService at addr. Extra dial options are appended
// after the default insecure transport credentials.
func Dial(addr, token string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &Client{conn: conn, token: token}, nil
}

// Close releases the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", c.token)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTransfer queues a transfer and returns the new order ID
func (c *Client) CreateTransfer(ctx context.Context, source, destination string, resourceID int64, amount string) (string, error) {
	out, err := c.invoke(ctx, "CreateTransfer", map[string]interface{}{
		"source":      source,
		"destination": destination,
		"resource_id": resourceID,
		"amount":      amount,
	})
	if err != nil {
		return "", err
	}
	return out.GetFields()["order_id"].GetStringValue(), nil
}

// GetContainer fetches a container by handle
func (c *Client) GetContainer(ctx context.Context, handle string) (ContainerMessage, error) {
	return c.getContainer(ctx, map[string]interface{}{"handle": handle})
}

// GetContainerByResource fetches the container holding a resource
func (c *Client) GetContainerByResource(ctx context.Context, resourceID int64) (ContainerMessage, error) {
	return c.getContainer(ctx, map[string]interface{}{"resource_id": resourceID})
}

func (c *Client) getContainer(ctx context.Context, req map[string]interface{}) (ContainerMessage, error) {
	out, err := c.invoke(ctx, "GetContainer", req)
	if err != nil {
		return ContainerMessage{}, err
	}
	return containerFromStruct(out.GetFields()["container"].GetStructValue()), nil
}

// ListContainers lists containers, optionally restricted to a category
func (c *Client) ListContainers(ctx context.Context, categoryID int64) ([]ContainerMessage, error) {
	req := map[string]interface{}{}
	if categoryID != 0 {
		req["category_id"] = categoryID
	}

	out, err := c.invoke(ctx, "ListContainers", req)
	if err != nil {
		return nil, err
	}

	values := out.GetFields()["containers"].GetListValue().GetValues()
	containers := make([]ContainerMessage, 0, len(values))
	for _, v := range values {
		containers = append(containers, containerFromStruct(v.GetStructValue()))
	}
	return containers, nil
}

// RunTick forces one tick on the server
func (c *Client) RunTick(ctx context.Context) (TickMessage, error) {
	out, err := c.invoke(ctx, "RunTick", map[string]interface{}{})
	if err != nil {
		return TickMessage{}, err
	}
	return tickFromStruct(out), nil
}

// GetOrder fetches a pending or recently resolved order
func (c *Client) GetOrder(ctx context.Context, orderID string) (OrderMessage, error) {
	out, err := c.invoke(ctx, "GetOrder", map[string]interface{}{"order_id": orderID})
	if err != nil {
		return OrderMessage{}, err
	}
	return orderFromStruct(out.GetFields()["order"].GetStructValue()), nil
}
