package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages.
const ServiceName = "docextract.v1.ExtractionService"

// ExtractionServer is the server API of ServiceName.
type ExtractionServer interface {
	ExtractText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDocuments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reextract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuleSets(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportResults(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ExtractionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, m unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return m(srv.(ExtractionServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return m(srv.(ExtractionServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var extractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		method("ExtractText", ExtractionServer.ExtractText),
		method("SubmitDocument", ExtractionServer.SubmitDocument),
		method("ListDocuments", ExtractionServer.ListDocuments),
		method("GetResults", ExtractionServer.GetResults),
		method("DeleteDocument", ExtractionServer.DeleteDocument),
		method("Reextract", ExtractionServer.Reextract),
		method("ImportRules", ExtractionServer.ImportRules),
		method("ListRuleSets", ExtractionServer.ListRuleSets),
		method("ExportResults", ExtractionServer.ExportResults),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docextract/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&extractionServiceDesc, srv)
}

// Client calls ServiceName methods by name.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method (for example "ListDocuments") with req as the request
// fields.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
