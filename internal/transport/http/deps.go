package http

import (
	"github.com/skillshare/api/internal/application/otp"
	"github.com/skillshare/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/skillshare/api/internal/infrastructure/jwt"
	s3infra "github.com/skillshare/api/internal/infrastructure/s3"
	"github.com/skillshare/api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	CategoryRepo *dynamo.CategoryRepo
	ProjectRepo  *dynamo.ProjectRepo
	OrderRepo    *dynamo.OrderRepo
	PaymentRepo  *dynamo.PaymentRepo
	WalletRepo   *dynamo.WalletRepo
	MessageRepo  *dynamo.MessageRepo
	ReviewRepo   *dynamo.ReviewRepo
	FileRepo     *dynamo.FileRepo
	Ledger       *otp.Ledger
	S3Store      *s3infra.Store
	Events       sns.Publisher
	JWTProvider  *jwtinfra.Provider
}
