package main

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	direct "defi_direct_back"
	"defi_direct_back/internal/wallet"
	"defi_direct_back/pkg/escrow"
	"defi_direct_back/pkg/handler"
	"defi_direct_back/pkg/paystack"
	"defi_direct_back/pkg/pricefeed"
	"defi_direct_back/pkg/repository"
	"defi_direct_back/pkg/service"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting defi-direct backend")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %s", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("failed to read config: %s", err.Error())
	}

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err.Error())
	}
	logrus.Info("database connected")

	signer, err := wallet.LoadSigner(os.Getenv("TREASURY_PRIVATE_KEY"))
	if err != nil {
		logrus.Fatalf("failed to load treasury signer: %s", err.Error())
	}
	logrus.Infof("treasury signer loaded: %s", signer.Address.Hex())

	escrowClient, err := escrow.NewClient(
		viper.GetString("chain.rpc_url"),
		viper.GetString("chain.escrow_contract"),
		signer,
	)
	if err != nil {
		logrus.Fatalf("failed to connect to chain: %s", err.Error())
	}

	tokens := map[string]common.Address{
		"USDC": common.HexToAddress(viper.GetString("chain.tokens.usdc")),
		"USDT": common.HexToAddress(viper.GetString("chain.tokens.usdt")),
	}

	gateway := paystack.NewClient(viper.GetString("paystack.base_url"), os.Getenv("PAYSTACK_SECRET_KEY"))
	feed := pricefeed.NewClient(os.Getenv("COINGECKO_API_KEY"))

	repos := repository.NewRepository(db)
	services := service.NewService(repos, escrowClient, gateway, feed, tokens)
	handlers := handler.NewHandler(services, os.Getenv("PAYSTACK_SECRET_KEY"))

	srv := new(direct.Server)
	if err := srv.Run(os.Getenv("PORT"), handlers.InitRoute()); err != nil {
		logrus.Fatalf("server stopped: %s", err)
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
