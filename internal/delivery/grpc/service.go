package grpc

import (
	"context"

	"GameMasterService/internal/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName полное имя gRPC сервиса
const ServiceName = "gamemaster.v1.GameMaster"

// GameMasterServer методы сервиса. Сообщения кодируются JSON-кодеком.
type GameMasterServer interface {
	GetUser(context.Context, *models.GetUserRequest) (*models.GetUserResponse, error)
	ListUsers(context.Context, *models.ListUsersRequest) (*models.ListUsersResponse, error)
	CreateUser(context.Context, *models.CreateUserRequest) (*models.InsertResult, error)
	BlockUser(context.Context, *models.BlockUserRequest) (*models.WriteResult, error)
	AwardExperience(context.Context, *models.AwardExperienceRequest) (*models.AwardExperienceResponse, error)
	InviteFriend(context.Context, *models.InviteFriendRequest) (*models.WriteResult, error)
	RespondToFriendRequest(context.Context, *models.RespondFriendRequest) (*models.WriteResult, error)
	ListCreatures(context.Context, *models.ListCreaturesRequest) (*models.ListCreaturesResponse, error)
	ListEvents(context.Context, *models.ListEventsRequest) (*models.ListEventsResponse, error)
	GetEvent(context.Context, *models.GetEventRequest) (*models.GetEventResponse, error)
	CreateEvent(context.Context, *models.CreateEventRequest) (*models.InsertResult, error)
	ResolveEvent(context.Context, *models.ResolveEventRequest) (*models.WriteResult, error)
}

// FullMethod возвращает полное имя метода для вызова
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary описывает метод сервиса с декодированием запроса и цепочкой перехватчиков
func unary[Req, Resp any](method string, call func(GameMasterServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			if interceptor == nil {
				return call(srv.(GameMasterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GameMasterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc описание сервиса для grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameMasterServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetUser", GameMasterServer.GetUser),
		unary("ListUsers", GameMasterServer.ListUsers),
		unary("CreateUser", GameMasterServer.CreateUser),
		unary("BlockUser", GameMasterServer.BlockUser),
		unary("AwardExperience", GameMasterServer.AwardExperience),
		unary("InviteFriend", GameMasterServer.InviteFriend),
		unary("RespondToFriendRequest", GameMasterServer.RespondToFriendRequest),
		unary("ListCreatures", GameMasterServer.ListCreatures),
		unary("ListEvents", GameMasterServer.ListEvents),
		unary("GetEvent", GameMasterServer.GetEvent),
		unary("CreateEvent", GameMasterServer.CreateEvent),
		unary("ResolveEvent", GameMasterServer.ResolveEvent),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamemaster/v1/gamemaster.json",
}

// RegisterGameMasterServer регистрирует реализацию сервиса
func RegisterGameMasterServer(s grpc.ServiceRegistrar, srv GameMasterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// GameMasterClient клиент сервиса поверх JSON-кодека
type GameMasterClient struct {
	cc grpc.ClientConnInterface
}

// NewGameMasterClient создает клиента
func NewGameMasterClient(cc grpc.ClientConnInterface) *GameMasterClient {
	return &GameMasterClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameMasterClient) GetUser(ctx context.Context, in *models.GetUserRequest, opts ...grpc.CallOption) (*models.GetUserResponse, error) {
	return invoke[models.GetUserResponse](ctx, c.cc, "GetUser", in, opts)
}

func (c *GameMasterClient) ListUsers(ctx context.Context, in *models.ListUsersRequest, opts ...grpc.CallOption) (*models.ListUsersResponse, error) {
	return invoke[models.ListUsersResponse](ctx, c.cc, "ListUsers", in, opts)
}

func (c *GameMasterClient) CreateUser(ctx context.Context, in *models.CreateUserRequest, opts ...grpc.CallOption) (*models.InsertResult, error) {
	return invoke[models.InsertResult](ctx, c.cc, "CreateUser", in, opts)
}

func (c *GameMasterClient) BlockUser(ctx context.Context, in *models.BlockUserRequest, opts ...grpc.CallOption) (*models.WriteResult, error) {
	return invoke[models.WriteResult](ctx, c.cc, "BlockUser", in, opts)
}

func (c *GameMasterClient) AwardExperience(ctx context.Context, in *models.AwardExperienceRequest, opts ...grpc.CallOption) (*models.AwardExperienceResponse, error) {
	return invoke[models.AwardExperienceResponse](ctx, c.cc, "AwardExperience", in, opts)
}

func (c *GameMasterClient) InviteFriend(ctx context.Context, in *models.InviteFriendRequest, opts ...grpc.CallOption) (*models.WriteResult, error) {
	return invoke[models.WriteResult](ctx, c.cc, "InviteFriend", in, opts)
}

func (c *GameMasterClient) RespondToFriendRequest(ctx context.Context, in *models.RespondFriendRequest, opts ...grpc.CallOption) (*models.WriteResult, error) {
	return invoke[models.WriteResult](ctx, c.cc, "RespondToFriendRequest", in, opts)
}

func (c *GameMasterClient) ListCreatures(ctx context.Context, in *models.ListCreaturesRequest, opts ...grpc.CallOption) (*models.ListCreaturesResponse, error) {
	return invoke[models.ListCreaturesResponse](ctx, c.cc, "ListCreatures", in, opts)
}

func (c *GameMasterClient) ListEvents(ctx context.Context, in *models.ListEventsRequest, opts ...grpc.CallOption) (*models.ListEventsResponse, error) {
	return invoke[models.ListEventsResponse](ctx, c.cc, "ListEvents", in, opts)
}

func (c *GameMasterClient) GetEvent(ctx context.Context, in *models.GetEventRequest, opts ...grpc.CallOption) (*models.GetEventResponse, error) {
	return invoke[models.GetEventResponse](ctx, c.cc, "GetEvent", in, opts)
}

func (c *GameMasterClient) CreateEvent(ctx context.Context, in *models.CreateEventRequest, opts ...grpc.CallOption) (*models.InsertResult, error) {
	return invoke[models.InsertResult](ctx, c.cc, "CreateEvent", in, opts)
}

func (c *GameMasterClient) ResolveEvent(ctx context.Context, in *models.ResolveEventRequest, opts ...grpc.CallOption) (*models.WriteResult, error) {
	return invoke[models.WriteResult](ctx, c.cc, "ResolveEvent", in, opts)
}
