package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gonuts/mintclient/cashu"
	"github.com/gonuts/mintclient/cashu/nuts/nut01"
	"github.com/gonuts/mintclient/cashu/nuts/nut02"
	"github.com/gonuts/mintclient/cashu/nuts/nut09"
	"github.com/gonuts/mintclient/client"
	"github.com/gonuts/mintclient/wallet/storage"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var (
	mintClient *client.HTTPClient
	quotesDB   *storage.BoltDB
	mintURL    string
)

const mintFlag = "mint"

type config struct {
	path     string
	mintURL  string
	logLevel slog.Level
	timeout  time.Duration
}

func nutcConfig() config {
	path := setNutcPath()
	// default config
	cfg := config{path: path, mintURL: "http://127.0.0.1:3338", logLevel: slog.LevelError, timeout: 30 * time.Second}

	envPath := filepath.Join(path, ".env")
	if _, err := os.Stat(envPath); err != nil {
		wd, err := os.Getwd()
		if err != nil {
			envPath = ""
		} else {
			envPath = filepath.Join(wd, ".env")
		}
	}

	if len(envPath) > 0 {
		// missing .env is fine, env vars may be set directly
		godotenv.Load(envPath)
	}
	cfg.mintURL = getMintURL()

	if level, ok := os.LookupEnv("NUTC_LOG_LEVEL"); ok {
		var logLevel slog.Level
		if err := logLevel.UnmarshalText([]byte(level)); err == nil {
			cfg.logLevel = logLevel
		}
	}
	if timeout, err := time.ParseDuration(os.Getenv("NUTC_TIMEOUT")); err == nil && timeout > 0 {
		cfg.timeout = timeout
	}

	return cfg
}

func setNutcPath() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}

	path := filepath.Join(homedir, ".gonuts", "nutc")
	err = os.MkdirAll(path, 0700)
	if err != nil {
		log.Fatal(err)
	}
	return path
}

func getMintURL() string {
	mintUrl := os.Getenv("MINT_URL")
	if len(mintUrl) > 0 {
		return mintUrl
	}

	mintHost := os.Getenv("MINT_HOST")
	mintPort := os.Getenv("MINT_PORT")
	if len(mintHost) == 0 || len(mintPort) == 0 {
		return "http://127.0.0.1:3338"
	}

	url := &url.URL{
		Scheme: "http",
		Host:   mintHost + ":" + mintPort,
	}
	return url.String()
}

func setupClient(ctx *cli.Context) error {
	cfg := nutcConfig()

	mintURL = cfg.mintURL
	if ctx.IsSet(mintFlag) {
		mintURL = ctx.String(mintFlag)
	}
	if _, err := client.JoinURL(mintURL, ""); err != nil {
		printErr(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel}))
	mintClient = client.NewHTTPClient(client.Config{
		Doer:      &http.Client{Timeout: cfg.timeout},
		Logger:    logger,
		UserAgent: "nutc",
	})

	var err error
	quotesDB, err = storage.InitBolt(cfg.path)
	if err != nil {
		printErr(err)
	}
	return nil
}

func closeDB(ctx *cli.Context) error {
	if quotesDB != nil {
		return quotesDB.Close()
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "nutc",
		Usage: "cashu legacy mint client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  mintFlag,
				Usage: "mint url, overrides MINT_URL",
			},
		},
		Before: setupClient,
		After:  closeDB,
		Commands: []*cli.Command{
			infoCmd,
			keysCmd,
			keysetsCmd,
			mintCmd,
			quotesCmd,
			feesCmd,
			checkCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var infoCmd = &cli.Command{
	Name:   "info",
	Usage:  "show mint info, keysets and active keys",
	Action: info,
}

func info(ctx *cli.Context) error {
	var (
		mintInfo *nut09.MintInfo
		keysets  *nut02.GetKeysetsResponse
		keys     nut01.Keys
	)

	g, gctx := errgroup.WithContext(ctx.Context)
	if infoGetter, ok := any(mintClient).(client.InfoGetter); ok {
		g.Go(func() error {
			var err error
			mintInfo, err = infoGetter.GetMintInfo(gctx, mintURL)
			// legacy mints without /info are still usable
			if errors.Is(err, client.ErrProtocol) || errors.Is(err, client.ErrDecode) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		var err error
		keysets, err = mintClient.GetMintKeysets(gctx, mintURL)
		return err
	})
	g.Go(func() error {
		var err error
		keys, err = mintClient.GetMintKeys(gctx, mintURL)
		return err
	})
	if err := g.Wait(); err != nil {
		printErr(err)
	}

	fmt.Printf("mint: %v\n", mintURL)
	if mintInfo != nil {
		name, version := mintInfo.VersionInfo()
		fmt.Printf("name: %v\n", mintInfo.Name)
		fmt.Printf("version: %v %v\n", name, version)
		if len(mintInfo.Description) > 0 {
			fmt.Printf("description: %v\n", mintInfo.Description)
		}
		for _, contact := range mintInfo.Contact {
			fmt.Printf("contact: %v %v\n", contact.Method, contact.Info)
		}
		if len(mintInfo.Nuts) > 0 {
			fmt.Printf("nuts: %v\n", strings.Join(mintInfo.Nuts, ", "))
		}
		if len(mintInfo.Motd) > 0 {
			fmt.Printf("motd: %v\n", mintInfo.Motd)
		}
	}
	fmt.Printf("active keyset: %v (%v keys)\n", keys.Id(), len(keys))
	fmt.Printf("keysets: %v\n", strings.Join(keysets.Keysets, ", "))
	return nil
}

var keysCmd = &cli.Command{
	Name:   "keys",
	Usage:  "show the active keys of the mint",
	Action: getKeys,
}

func getKeys(ctx *cli.Context) error {
	keys, err := mintClient.GetMintKeys(ctx.Context, mintURL)
	if err != nil {
		printErr(err)
	}

	fmt.Printf("keyset id: %v\n", keys.Id())
	for _, amount := range keys.Amounts() {
		fmt.Printf("%v: %v\n", amount, keys[amount])
	}
	return nil
}

var keysetsCmd = &cli.Command{
	Name:   "keysets",
	Usage:  "list keyset ids of the mint",
	Action: getKeysets,
}

func getKeysets(ctx *cli.Context) error {
	keysets, err := mintClient.GetMintKeysets(ctx.Context, mintURL)
	if err != nil {
		printErr(err)
	}

	for _, id := range keysets.Keysets {
		fmt.Println(id)
	}
	return nil
}

var mintCmd = &cli.Command{
	Name:      "mint",
	Usage:     "request an invoice to mint tokens",
	ArgsUsage: "<amount>",
	Action:    requestMint,
}

func requestMint(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify an amount to mint"))
	}
	amount, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil || amount == 0 {
		printErr(errors.New("invalid amount"))
	}

	mintResponse, err := mintClient.RequestMint(ctx.Context, mintURL, amount)
	if err != nil {
		printErr(err)
	}

	quote := storage.MintQuote{
		Hash:           mintResponse.Hash,
		PaymentRequest: mintResponse.PaymentRequest,
		Mint:           mintURL,
		Amount:         amount,
		CreatedAt:      time.Now().Unix(),
	}
	if err := quotesDB.SaveMintQuote(quote); err != nil {
		printErr(err)
	}

	fmt.Printf("invoice: %v\n\n", quote.PaymentRequest)
	fmt.Printf("hash: %v\n", quote.Hash)
	return nil
}

var quotesCmd = &cli.Command{
	Name:  "quotes",
	Usage: "list saved mint quotes",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "delete",
			Usage: "delete the quote with this hash",
		},
	},
	Action: listQuotes,
}

func listQuotes(ctx *cli.Context) error {
	if ctx.IsSet("delete") {
		if err := quotesDB.DeleteMintQuote(ctx.String("delete")); err != nil {
			printErr(err)
		}
		fmt.Println("quote deleted")
		return nil
	}

	quotes := quotesDB.GetMintQuotes()
	if len(quotes) == 0 {
		fmt.Println("no saved quotes")
		return nil
	}
	for _, quote := range quotes {
		created := time.Unix(quote.CreatedAt, 0).Format(time.DateTime)
		fmt.Printf("%v  %v sats  %v  %v\n", created, quote.Amount, quote.Mint, quote.Hash)
	}
	return nil
}

var feesCmd = &cli.Command{
	Name:      "fees",
	Usage:     "check the lightning fee reserve to pay an invoice",
	ArgsUsage: "<invoice>",
	Action:    checkFees,
}

func checkFees(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("specify a lightning invoice"))
	}
	invoice, err := cashu.ParseBolt11Invoice(args.First())
	if err != nil {
		printErr(err)
	}

	fees, err := mintClient.CheckFees(ctx.Context, mintURL, invoice)
	if err != nil {
		printErr(err)
	}

	fmt.Printf("invoice amount: %v sats\n", invoice.Amount())
	fmt.Printf("fee reserve: %v sats\n", fees.Fee)
	return nil
}

var checkCmd = &cli.Command{
	Name:      "check",
	Usage:     "check if the proofs in a token are still spendable",
	ArgsUsage: "<token>",
	Action:    checkToken,
}

func checkToken(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		printErr(errors.New("cashu token not provided"))
	}
	token, err := cashu.DecodeTokenV3(args.First())
	if err != nil {
		printErr(err)
	}

	checker, ok := any(mintClient).(client.SpendableChecker)
	if !ok {
		printErr(errors.New("built without support for checking proofs"))
	}

	// check against the mint in the token unless one was set
	tokenMint := mintURL
	if !ctx.IsSet(mintFlag) && len(token.Mint()) > 0 {
		tokenMint = token.Mint()
	}

	proofs := token.Proofs()
	states, err := checker.CheckSpendable(ctx.Context, tokenMint, proofs)
	if err != nil {
		printErr(err)
	}

	spent := states.Spent(proofs)
	fmt.Printf("token amount: %v sats\n", token.Amount())
	fmt.Printf("spent: %v sats in %v proofs\n", spent.Amount(), len(spent))
	return nil
}

func printErr(msg error) {
	fmt.Println(msg.Error())
	os.Exit(0)
}
