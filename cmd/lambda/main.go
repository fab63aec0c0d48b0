package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"

	adaptermiddleware "elearn-backoffice/internal/adapters/http/middleware"
	adapterlogger "elearn-backoffice/internal/adapters/logger"
	"elearn-backoffice/internal/application"
	"elearn-backoffice/internal/infrastructure/auth"
	"elearn-backoffice/internal/infrastructure/dynamodb"
	httpiface "elearn-backoffice/internal/interfaces/http"
	"elearn-backoffice/internal/platform/lambda"
)

func main() {
	logger := adapterlogger.New("elearn-backoffice-lambda")

	tableName := os.Getenv("TABLE_NAME")
	region := os.Getenv("AWS_REGION")
	if tableName == "" || region == "" {
		logger.Error(context.Background(), "missing required environment variables")
		os.Exit(1)
	}
	authMode, err := adaptermiddleware.ParseAuthMode()
	if err != nil {
		logger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	ddbClient, err := dynamodb.NewClient(context.Background(), region, tableName)
	if err != nil {
		logger.Error(context.Background(), "failed to initialize dynamodb client", "error", err)
		os.Exit(1)
	}
	roleRepo := dynamodb.NewRoleRepository(ddbClient)
	assignmentRepo := dynamodb.NewAssignmentRepository(ddbClient)
	treeRepo := dynamodb.NewTreeRepository(ddbClient)

	roleSvc := application.NewRoleService(roleRepo)
	accessSvc := application.NewAccessService(assignmentRepo, roleRepo)
	treeSvc := application.NewTreeService(treeRepo, logger)
	resolver := application.NewAccessResolver(assignmentRepo, roleRepo, logger)

	var cognitoHandler echo.MiddlewareFunc
	if authMode == adaptermiddleware.ModeCognito {
		cognitoHandler = auth.NewCognitoMiddleware(os.Getenv("COGNITO_USER_POOL_ID"), region).Handler
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(cognitoHandler)
	if err != nil {
		logger.Error(context.Background(), "failed to initialize auth middleware", "error", err)
		os.Exit(1)
	}

	e := httpiface.NewRouter(
		httpiface.NewRolesHandler(roleSvc),
		httpiface.NewAccessHandler(accessSvc),
		httpiface.NewAuthorizationHandler(resolver),
		httpiface.NewTreesHandler(treeSvc),
		httpiface.Middleware{
			Auth:          authMiddleware,
			RequestLogger: adaptermiddleware.RequestLogger(logger),
			Decider:       resolver,
		},
	)
	awslambda.Start(lambda.NewHandler(e))
}
