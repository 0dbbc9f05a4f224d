package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/epos"
	httpapi "github.com/Riboost-Studio/kiosk-ticket-printer/internal/http"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/log"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/model"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/services"
	"github.com/Riboost-Studio/kiosk-ticket-printer/internal/utils"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the websocket print agent",
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()
			c.Context = ctx

			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			logger := log.FromContext(ctx)
			config := rt.config

			if config.APIURL != "" && config.APIKey != "" {
				if err := registerPrinter(ctx, rt); err != nil {
					logger.WithError(err).Warn("Failed to register printer with server")
				}
			}

			handler := httpapi.NewHandler(rt.app, rt.configs, rt.logs, rt.orders, rt.printer, rt.previewer, rt.location)
			server := &http.Server{
				Addr:              config.HTTPAddr,
				Handler:           httpapi.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.WithField("addr", config.HTTPAddr).Info("Server starting...")
				err := server.ListenAndServe()
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})

			if config.WSURL != "" && config.APIKey != "" {
				agent := services.NewAgent(config.WSURL, config.APIKey, rt.configs, rt.printer)
				g.Go(func() error {
					return agent.Run(ctx)
				})
			} else {
				logger.Info("No WebSocket URL or API key configured, upstream agent disabled")
			}

			logger.Infof("--- %s %s running ---", rt.app.Name, rt.app.Version)

			err = g.Wait()
			logger.Info("Shutting down...")
			return err
		},
	}
}

// registerPrinter obtains an agent key for the stored printer once.
func registerPrinter(ctx context.Context, rt *agentRuntime) error {
	printer, err := rt.configs.GetPrinterConfig(ctx)
	if err != nil {
		return err
	}
	if printer.AgentKey != "" || printer.Host == "" {
		return nil
	}

	printer.TenantID = rt.config.TenantID
	printer.RestaurantID = rt.config.RestaurantID

	log.FromContext(ctx).Infof("Registering printer '%s' with server...", printer.Label())
	if err := services.RegisterPrinterOnServer(ctx, rt.config.APIURL, rt.config.APIKey, &printer); err != nil {
		return err
	}

	_, err = rt.configs.SavePrinterConfig(ctx, printer)
	return err
}

func printTestCommand() *cli.Command {
	return &cli.Command{
		Name:  "print-test",
		Usage: "print the printer-setup test ticket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "ticket text"},
		},
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			printer, err := rt.configs.GetPrinterConfig(c.Context)
			if err != nil {
				return err
			}

			resp, err := rt.printer.PrintTest(c.Context, printer, c.String("text"))
			return reportPrint(c.App.Writer, resp, err)
		},
	}
}

func printTicketCommand() *cli.Command {
	return &cli.Command{
		Name:      "print-ticket",
		Usage:     "print a kiosk ticket from a JSON ticket request",
		ArgsUsage: "<ticket.json | ->",
		Action: func(c *cli.Context) error {
			req, err := readTicketRequest(c.Args().First(), c.App.Reader)
			if err != nil {
				return err
			}

			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			printer, err := rt.configs.GetPrinterConfig(c.Context)
			if err != nil {
				return err
			}

			resp, err := rt.printer.PrintTicket(c.Context, printer, req)
			return reportPrint(c.App.Writer, resp, err)
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "render a ticket without printing it",
		ArgsUsage: "<ticket.json | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "text", Usage: "text, xml, html or png"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
		},
		Action: func(c *cli.Context) error {
			req, err := readTicketRequest(c.Args().First(), c.App.Reader)
			if err != nil {
				return err
			}

			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			var out []byte
			switch c.String("format") {
			case "text":
				out = []byte(rt.printer.ReceiptBody(req) + "\n")
			case "xml":
				out = []byte(rt.printer.Document(req))
			case "html":
				html, err := rt.previewer.RenderTicketHTML(req)
				if err != nil {
					return err
				}
				out = []byte(html)
			case "png":
				if out, err = rt.previewer.RenderTicketPNG(c.Context, req); err != nil {
					return err
				}
			default:
				return cli.Exit("format must be text, xml, html or png", 2)
			}

			if path := c.String("out"); path != "" {
				return os.WriteFile(path, out, 0644)
			}
			_, err = c.App.Writer.Write(out)
			return err
		},
	}
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "scan the local /24 for ePOS printers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subnet", Usage: "first three octets, e.g. 192.168.2 (default: local subnet)"},
		},
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			found, err := services.DiscoverPrinters(c.Context, c.String("subnet"))
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(c.App.Writer, "No ePOS printers found.")
				return nil
			}

			reader := bufio.NewReader(c.App.Reader)
			for _, ip := range found {
				if !utils.Confirm(reader, c.App.Writer, fmt.Sprintf("Found printer at %s. Use this printer?", ip)) {
					continue
				}

				printer, err := rt.configs.GetPrinterConfig(c.Context)
				if err != nil {
					return err
				}
				printer.Host = ip
				printer.Enabled = true

				fmt.Fprint(c.App.Writer, "  Name (e.g., Caja): ")
				name, _ := reader.ReadString('\n')
				if name = strings.TrimSpace(name); name != "" {
					printer.Name = name
				}

				saved, err := rt.configs.SavePrinterConfig(c.Context, printer)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Printer '%s' saved.\n", saved.Label())
				return nil
			}
			return nil
		},
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "answer a few questions and write the configuration file",
		Action: func(c *cli.Context) error {
			config, err := loadConfig(c)
			if err != nil {
				return err
			}

			config = utils.SetupConfig(c.App.Reader, c.App.Writer, config)
			if err := utils.SaveConfig(c.String("config"), config); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Configuration saved.")
			return nil
		},
	}
}

func doctorCommand() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "check that PNG previews can be rendered",
		Action: func(c *cli.Context) error {
			config, err := loadConfig(c)
			if err != nil {
				return err
			}
			_, err = utils.ValidateSystemRequirements(c.App.Writer, config.ChromePath)
			return err
		},
	}
}

func readTicketRequest(path string, stdin io.Reader) (model.TicketRequest, error) {
	var req model.TicketRequest

	var data []byte
	var err error
	switch path {
	case "":
		return req, cli.Exit("missing ticket file (use - for stdin)", 2)
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, err
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parsing ticket request: %w", err)
	}
	return req, nil
}

// reportPrint prints the outcome for a person at the terminal.
func reportPrint(w io.Writer, resp model.PrinterResponse, err error) error {
	kind := epos.KindOf(err)
	fmt.Fprintln(w, epos.UserMessage(kind))
	if resp.ResultCode != "" {
		fmt.Fprintf(w, "  code: %s\n", resp.ResultCode)
	}
	if resp.DeviceStatus != nil {
		fmt.Fprintf(w, "  status: %d\n", *resp.DeviceStatus)
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
