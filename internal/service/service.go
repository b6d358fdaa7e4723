package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gitlab.com/symplylade/portfolio-api/internal/catalog"
	"gitlab.com/symplylade/portfolio-api/internal/model"
	"gitlab.com/symplylade/portfolio-api/internal/notify"
	api "gitlab.com/symplylade/portfolio-api/pkg/model"
)

const (
	// WelcomeMessage is returned by the root endpoint.
	WelcomeMessage = "Welcome to SymplyLade Portfolio API"

	// DeliveredMessage acknowledges every stored contact message.
	DeliveredMessage = "Message delivered successfully!"

	// NotificationSubject is the subject of the email sent for a contact message.
	NotificationSubject = "New Portfolio Message"
)

// ContactStore persists contact messages and assigns their ids.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error
}

// Service bundles the collaborators the HTTP handlers need. All of them are
// constructed by the caller, so tests can substitute any of them.
type Service struct {
	store    ContactStore
	notifier notify.Notifier
	catalog  *catalog.Catalog
}

// New creates a Service. The root endpoint works even when store and notifier
// are nil.
func New(store ContactStore, notifier notify.Notifier, projects *catalog.Catalog) *Service {
	return &Service{store: store, notifier: notifier, catalog: projects}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Service) SetupHttpRouter(requestLogging bool) *gin.Engine {
	var router *gin.Engine
	if requestLogging {
		router = gin.Default()
	} else {
		slog.Info("turning off HTTP request logging")
		router = gin.New()
		router.Use(gin.Recovery())
	}
	router.Use(corsMiddleware())
	router.GET("/", s.welcome)
	router.GET("/projects", s.findProjects)
	router.POST("/contact", s.receiveMessage)
	return router
}

// corsMiddleware accepts requests from any origin. Origin and headers are
// listed explicitly instead of "*" because browsers take a wildcard literally
// on credentialed requests.
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Language",
			"Authorization", "X-Requested-With", "Cache-Control",
		},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})
}

// welcome responds with a fixed greeting.
//
// Example REST API call:
//
//	> curl http://localhost:8000/
func (s *Service) welcome(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, api.Welcome{Message: WelcomeMessage})
}

// findProjects responds with the project catalog as JSON.
//
// Example REST API call:
//
//	> curl http://localhost:8000/projects
func (s *Service) findProjects(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.catalog.Projects())
}

// receiveMessage stores the contact message specified in the request's JSON, notifies the site
// operator by email, and acknowledges the message.
//
// All four fields are required strings. Anything else is answered with 422 before the database
// is touched. The email is best-effort: whether it was delivered has no influence on the
// response.
//
// Example REST API call:
//
//	> curl http://localhost:8000/contact --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "email": "hans@example.com", "phone": "0815", "message": "Hello"}'
func (s *Service) receiveMessage(c *gin.Context) {
	var submission api.ContactSubmission
	if err := bindSubmission(c, &submission); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetail(err)})
		return
	}
	msg := model.ContactMessage{
		Name:    *submission.Name,
		Email:   *submission.Email,
		Phone:   *submission.Phone,
		Message: *submission.Message,
	}
	ctx := c.Request.Context()
	if err := s.store.CreateContactMessage(ctx, &msg); err != nil {
		slog.ErrorContext(ctx, "could not store contact message", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
		return
	}
	slog.InfoContext(ctx, "contact message stored", "id", msg.Id)

	// The outcome is ignored on purpose; the notifier has already logged it.
	_ = s.notifier.Notify(context.WithoutCancel(ctx), notify.Notification{
		Subject: NotificationSubject,
		Body:    FormatNotification(msg),
	})

	c.IndentedJSON(http.StatusOK, api.Acknowledgment{Success: true, Message: DeliveredMessage})
}

// errTrailingData rejects bodies that carry more than one JSON value.
var errTrailingData = errors.New("unexpected data after the JSON body")

// bindSubmission decodes exactly one JSON value from the request body and runs
// the binding validation on it.
func bindSubmission(c *gin.Context, submission *api.ContactSubmission) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(submission); err != nil {
		return err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return binding.Validator.ValidateStruct(submission)
}

// FormatNotification renders the plain text email body for a contact message.
func FormatNotification(msg model.ContactMessage) string {
	return fmt.Sprintf(`New Portfolio Contact Message:

Name: %s
Email: %s
Phone: %s
Message:
%s
`, msg.Name, msg.Email, msg.Phone, msg.Message)
}

// fieldError describes one reason why a request body was rejected.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// validationDetail translates a binding error into a list of field errors.
func validationDetail(err error) []fieldError {
	var missing validator.ValidationErrors
	if errors.As(err, &missing) {
		detail := make([]fieldError, 0, len(missing))
		for _, fe := range missing {
			detail = append(detail, fieldError{
				Loc:  []string{"body", strings.ToLower(fe.Field())},
				Msg:  "Field required",
				Type: "missing",
			})
		}
		return detail
	}
	var wrongType *json.UnmarshalTypeError
	if errors.As(err, &wrongType) {
		loc := []string{"body"}
		if wrongType.Field != "" {
			loc = append(loc, wrongType.Field)
		}
		return []fieldError{{Loc: loc, Msg: "Input should be a valid " + wrongType.Type.String(), Type: "type_error"}}
	}
	return []fieldError{{Loc: []string{"body"}, Msg: "Invalid JSON: " + err.Error(), Type: "json_invalid"}}
}
