package webapp

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"storefront/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

type Access int

const (
	Public Access = iota
	Private
)

func (a Access) String() string {
	if a == Private {
		return "private"
	}
	return "public"
}

// Route maps a path pattern to the screen it renders.
type Route struct {
	Path   string
	Screen string
	Access Access
}

// DefaultRoutes is the storefront route table in declared order.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Screen: "Home", Access: Public},
		{Path: "/product/:id", Screen: "Product", Access: Public},
		{Path: "/cart", Screen: "Cart", Access: Public},
		{Path: "/photo", Screen: "Photo", Access: Public},
		{Path: "/auth", Screen: "Login", Access: Public},
		{Path: "/register", Screen: "Register", Access: Public},

		{Path: "/shipping", Screen: "Shipping", Access: Private},
		{Path: "/payment", Screen: "Payment", Access: Private},
		{Path: "/placeorder", Screen: "PlaceOrder", Access: Private},
		{Path: "/order/:id", Screen: "Order", Access: Private},
		{Path: "/profile", Screen: "Profile", Access: Private},
	}
}

type Router struct {
	routes []Route
	gate   Gate
	tokens *auth.Tokens
	tmpl   *template.Template
}

// NewRouter serves routes inside the shared App layout. Private routes go
// through a gate that redirects to the first Login screen, "/auth" by
// default.
func NewRouter(routes []Route, tokens *auth.Tokens) *Router {
	login := "/auth"
	for _, rt := range routes {
		if rt.Screen == "Login" {
			login = rt.Path
			break
		}
	}
	return &Router{
		routes: routes,
		gate:   Gate{LoginPath: login},
		tokens: tokens,
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (rt *Router) Routes() []Route {
	return append([]Route(nil), rt.routes...)
}

// Mount registers the public branch, then the gated branch, each in
// declared order. gin panics on two patterns that match the same paths, so
// a table that mounts has no ambiguous matches.
func (rt *Router) Mount(r gin.IRouter) {
	for _, route := range rt.routes {
		if route.Access == Public {
			r.GET(route.Path, rt.screen(route))
		}
	}

	private := r.Group("", rt.gate.Middleware(rt.tokens))
	for _, route := range rt.routes {
		if route.Access == Private {
			private.GET(route.Path, rt.screen(route))
		}
	}
}

type page struct {
	Screen  string
	Access  string
	Params  map[string]string
	Session Session
}

func (rt *Router) screen(route Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		rt.render(c, http.StatusOK, page{
			Screen:  route.Screen,
			Access:  route.Access.String(),
			Params:  params,
			Session: sessionOf(c, rt.tokens),
		})
	}
}

// NotFound renders the layout with the NotFound screen.
func (rt *Router) NotFound(c *gin.Context) {
	rt.render(c, http.StatusNotFound, page{
		Screen:  "NotFound",
		Access:  Public.String(),
		Session: sessionOf(c, rt.tokens),
	})
}

func (rt *Router) render(c *gin.Context, status int, p page) {
	c.Render(status, render.HTML{Template: rt.tmpl, Name: "layout", Data: p})
}
