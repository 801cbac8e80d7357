package httpapi

import (
	"net/http"

	"github.com/Dospalko/roomsplit/internal/auth"
	"github.com/Dospalko/roomsplit/internal/middleware"
	"github.com/Dospalko/roomsplit/internal/service"
)

// Services bundles everything the router serves.
type Services struct {
	Auth      *service.AuthService
	Rooms     *service.RoomService
	Bills     *service.BillService
	Payments  *service.PaymentTracker
	Summaries *service.SummaryAggregator
	Invites   *service.InviteService
}

// NewRouter builds the API mux. The auth endpoints sit behind the rate
// limiter; everything else requires a valid bearer token.
func NewRouter(svc Services, jwtManager *auth.JWTManager, limiter *middleware.RateLimiter) http.Handler {
	authHandler := NewAuthHandler(svc.Auth)
	roomHandler := NewRoomHandler(svc.Rooms, svc.Summaries)
	billHandler := NewBillHandler(svc.Bills, svc.Payments)
	inviteHandler := NewInviteHandler(svc.Invites)

	mux := http.NewServeMux()

	mux.Handle("POST /api/register", limiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/login", limiter.Middleware(http.HandlerFunc(authHandler.Login)))

	protected := http.NewServeMux()

	protected.HandleFunc("POST /api/rooms", roomHandler.CreateRoom)
	protected.HandleFunc("GET /api/rooms", roomHandler.ListRooms)
	protected.HandleFunc("GET /api/rooms/{roomID}", roomHandler.GetRoom)
	protected.HandleFunc("GET /api/rooms/{roomID}/summary", roomHandler.Summary)

	protected.HandleFunc("POST /api/rooms/{roomID}/members", roomHandler.AddMember)
	protected.HandleFunc("GET /api/rooms/{roomID}/members", roomHandler.ListMembers)
	protected.HandleFunc("PATCH /api/members/{memberID}", roomHandler.RenameMember)
	protected.HandleFunc("DELETE /api/members/{memberID}", roomHandler.RemoveMember)

	protected.HandleFunc("POST /api/rooms/{roomID}/categories", roomHandler.AddCategory)
	protected.HandleFunc("GET /api/rooms/{roomID}/categories", roomHandler.ListCategories)
	protected.HandleFunc("DELETE /api/rooms/{roomID}/categories/{categoryID}", roomHandler.DeleteCategory)

	protected.HandleFunc("POST /api/rooms/{roomID}/tags", roomHandler.AddTag)
	protected.HandleFunc("GET /api/rooms/{roomID}/tags", roomHandler.ListTags)
	protected.HandleFunc("DELETE /api/rooms/{roomID}/tags/{tagID}", roomHandler.DeleteTag)

	protected.HandleFunc("POST /api/rooms/{roomID}/bills", billHandler.CreateBill)
	protected.HandleFunc("GET /api/rooms/{roomID}/bills", billHandler.ListBills)
	protected.HandleFunc("GET /api/bills/{billID}", billHandler.GetBill)
	protected.HandleFunc("DELETE /api/bills/{billID}", billHandler.DeleteBill)
	protected.HandleFunc("PATCH /api/shares/{shareID}", billHandler.SetSharePaid)

	protected.HandleFunc("POST /api/rooms/{roomID}/invites", inviteHandler.CreateInvite)
	protected.HandleFunc("GET /api/rooms/{roomID}/invites", inviteHandler.ListInvites)
	protected.HandleFunc("DELETE /api/rooms/{roomID}/invites/{inviteID}", inviteHandler.DeactivateInvite)
	protected.HandleFunc("POST /api/join/{code}", inviteHandler.Join)

	mux.Handle("/api/", middleware.RequireAuth(jwtManager)(protected))

	return mux
}
