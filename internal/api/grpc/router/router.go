package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/reelscore-server/internal/api/grpc/handler"
	"github.com/dtroode/reelscore-server/internal/api/grpc/middleware"
	"github.com/dtroode/reelscore-server/internal/logger"
	"github.com/dtroode/reelscore-server/internal/model"
	"github.com/dtroode/reelscore-server/proto"
)

// protectedMethods require a valid access token.
var protectedMethods = map[string]struct{}{
	proto.Auth_Me_FullMethodName:              {},
	proto.Auth_UpdateProfile_FullMethodName:   {},
	proto.Auth_DeleteProfile_FullMethodName:   {},
	proto.Auth_AdminUpdateUser_FullMethodName: {},
	proto.Auth_AdminDeleteUser_FullMethodName: {},
}

// adminMethods additionally require the ADMIN role.
var adminMethods = map[string]struct{}{
	proto.Auth_AdminUpdateUser_FullMethodName: {},
	proto.Auth_AdminDeleteUser_FullMethodName: {},
}

// Router builds the gRPC server with its interceptor chain and services.
type Router struct {
	sessions       handler.SessionService
	profiles       handler.ProfileService
	tokenParser    middleware.AccessTokenParser
	observer       middleware.RequestObserver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	sessions handler.SessionService,
	profiles handler.ProfileService,
	tokenParser middleware.AccessTokenParser,
	observer middleware.RequestObserver,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		sessions:       sessions,
		profiles:       profiles,
		tokenParser:    tokenParser,
		observer:       observer,
		contextManager: contextManager,
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, ok := protectedMethods[c.FullMethod()]
	return ok
}

func requiresAdmin(_ context.Context, c interceptors.CallMeta) bool {
	_, ok := adminMethods[c.FullMethod()]
	return ok
}

// Register creates the gRPC server: logging and metrics wrap every call,
// authentication runs only for protected methods and the role check only
// for admin methods.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(r.observer)
	authenticate := middleware.NewAuthenticate(r.tokenParser, r.contextManager, r.logger)
	authorize := middleware.NewAuthorize(r.contextManager, r.logger)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			metrics.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
			selector.UnaryServerInterceptor(
				authorize.RequireRole(model.RoleAdmin),
				selector.MatchFunc(requiresAdmin),
			),
		),
	)

	s := grpc.NewServer(opts...)
	r.registerAuthRoutes(s)

	return s
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.sessions, r.profiles, r.contextManager, r.logger)
	proto.RegisterAuthServer(server, authHandler)
}
