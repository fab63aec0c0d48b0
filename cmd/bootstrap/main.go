package main

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	adaptermiddleware "elearn-backoffice/internal/adapters/http/middleware"
	adapterlogger "elearn-backoffice/internal/adapters/logger"
	"elearn-backoffice/internal/application"
	"elearn-backoffice/internal/infrastructure/auth"
	"elearn-backoffice/internal/infrastructure/dynamodb"
	httpiface "elearn-backoffice/internal/interfaces/http"
)

type config struct {
	TableName  string
	Region     string
	UserPoolID string
	AuthMode   adaptermiddleware.Mode
	Port       string
}

func loadConfig() (config, error) {
	authMode, err := adaptermiddleware.ParseAuthMode()
	if err != nil {
		return config{}, err
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	cfg := config{
		TableName:  os.Getenv("TABLE_NAME"),
		Region:     os.Getenv("AWS_REGION"),
		UserPoolID: os.Getenv("COGNITO_USER_POOL_ID"),
		AuthMode:   authMode,
		Port:       port,
	}
	if cfg.TableName == "" || cfg.Region == "" {
		return config{}, errors.New("missing required environment variables")
	}
	if cfg.AuthMode == adaptermiddleware.ModeCognito && cfg.UserPoolID == "" {
		return config{}, errors.New("COGNITO_USER_POOL_ID is required for cognito auth mode")
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()
	logger := adapterlogger.New("elearn-backoffice")

	cfg, err := loadConfig()
	if err != nil {
		logger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	xray.Configure(xray.Config{LogLevel: "error"})

	ddbClient, err := dynamodb.NewClient(context.Background(), cfg.Region, cfg.TableName)
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
	if cfg.AuthMode == adaptermiddleware.ModeCognito {
		cognitoHandler = auth.NewCognitoMiddleware(cfg.UserPoolID, cfg.Region).Handler
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(cognitoHandler)
	if err != nil {
		logger.Error(context.Background(), "failed to initialize auth middleware", "error", err)
		os.Exit(1)
	}
	mw := httpiface.Middleware{
		Auth:          authMiddleware,
		XRay:          adaptermiddleware.XRayMiddleware("elearn-backoffice-http"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
		Decider:       resolver,
	}

	e := httpiface.NewRouter(
		httpiface.NewRolesHandler(roleSvc),
		httpiface.NewAccessHandler(accessSvc),
		httpiface.NewAuthorizationHandler(resolver),
		httpiface.NewTreesHandler(treeSvc),
		mw,
	)
	logger.Info(context.Background(), "starting http server", "port", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
