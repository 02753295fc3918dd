package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ZentaChain/zentalk-content/pkg/content"
	"github.com/ZentaChain/zentalk-content/pkg/crypto"
	"github.com/ZentaChain/zentalk-content/pkg/derived"
	"github.com/ZentaChain/zentalk-content/pkg/draft"
	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/logger"
	"github.com/ZentaChain/zentalk-content/pkg/report"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// Custom message ID algorithms understood by the tool
const (
	algBlake3     uint8 = 0x40
	algBlake2b256 uint8 = 0x41
)

var customAlgNames = map[string]uint8{
	"blake3":      algBlake3,
	"blake2b-256": algBlake2b256,
}

var errMissingAddress = errors.New("sender and room are required; pass --sender and --room or set the URI extensions")

func newRegistry() (*content.HashRegistry, error) {
	return content.NewHashRegistry(content.HashRegistryConfig{
		Custom: map[uint8]crypto.Digest{
			algBlake3:     crypto.Blake3(),
			algBlake2b256: crypto.Blake2b256(),
		},
	})
}

func parseAlg(name string) (content.HashAlg, error) {
	if alg, ok := content.ParseHashAlg(name); ok {
		return alg, nil
	}
	if code, ok := customAlgNames[name]; ok {
		return enum.FromUint8[content.BaseHashAlg](code), nil
	}
	return content.HashAlg{}, fmt.Errorf("unknown hash algorithm %q", name)
}

func inFlag() cli.StringFlag {
	return cli.StringFlag{Name: "in, i", Usage: "input file"}
}

func requireIn(c *cli.Context) (string, error) {
	path := c.String("in")
	if path == "" {
		return "", errors.New("--in is required")
	}
	return path, nil
}

func (e *env) loadContent(c *cli.Context) (*content.MimiContent, error) {
	path, err := requireIn(c)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return e.decoder.DecodeFrom(f)
}

// address resolves sender and room from flags, falling back to the
// envelope's URI extensions
func address(c *cli.Context, m *content.MimiContent) (string, string, error) {
	sender, room := c.String("sender"), c.String("room")
	if sender == "" {
		sender, _ = m.SenderURI()
	}
	if room == "" {
		room, _ = m.RoomURI()
	}
	if sender == "" || room == "" {
		return "", "", errMissingAddress
	}
	return sender, room, nil
}

func encodeCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "encode",
		Usage: "Encode a YAML draft into a content envelope",
		Flags: []cli.Flag{
			inFlag(),
			cli.StringFlag{Name: "out, o", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireIn(c)
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				return errors.New("--out is required")
			}

			d, err := draft.Load(path)
			if err != nil {
				return err
			}
			m, err := d.Build(nil)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := m.EncodeTo(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			logger.Log.Info("encoded", zap.String("out", out), zap.String("salt", fmt.Sprintf("%x", m.Salt())))

			if d.Addressed() {
				id, err := content.NewMessageID(d.Sender, d.Room, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "message-id: %s\n", id)
			}
			return nil
		},
	}
}

func inspectCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "inspect",
		Usage: "Print a content envelope in diagnostic notation with a summary",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			path, err := requireIn(c)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			m, err := e.decoder.DecodeContent(data)
			if err != nil {
				return err
			}
			diag, err := wire.Diagnose(data)
			if err != nil {
				return err
			}

			logger.Log.Debug("inspect", zap.Int("bytes", len(data)))

			fmt.Fprintf(e.out, "%s\n\n", diag)
			return summarize(e, m)
		},
	}
}

func summarize(e *env, m *content.MimiContent) error {
	salt := m.Salt()
	fmt.Fprintf(e.out, "salt:        %x\n", salt[:])
	if topic, ok := m.TopicID(); ok {
		fmt.Fprintf(e.out, "topic:       %s\n", topic)
	}
	if id, ok := m.Replaces(); ok {
		fmt.Fprintf(e.out, "replaces:    %s\n", id)
	}
	if id, ok := m.InReplyTo(); ok {
		fmt.Fprintf(e.out, "in-reply-to: %s\n", id)
	}
	if exp, ok := m.Expires(); ok {
		kind := "absolute"
		if exp.Relative {
			kind = "relative"
		}
		fmt.Fprintf(e.out, "expires:     %d (%s)\n", exp.Time, kind)
	}
	for name, value := range m.Extensions().All() {
		fmt.Fprintf(e.out, "extension:   %s = %s\n", name, value)
	}

	root := m.NestedPart()
	fmt.Fprintf(e.out, "parts:       %d (depth %d)\n", content.Count(root), content.Depth(root))
	return content.Walk(&root, func(p *content.NestedPart, depth int) error {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(e.out, "%s- %s %s %s", indent, p.Cardinality(), p.Disposition, p.Language)
		switch body := p.Content.(type) {
		case *content.SinglePart:
			fmt.Fprintf(e.out, " %s (%d bytes)", body.ContentType, len(body.Content))
		case *content.ExternalPart:
			fmt.Fprintf(e.out, " %s %s", body.ContentType, body.URL)
		case *content.MultiPart:
			fmt.Fprintf(e.out, " %s", body.PartSemantics)
		}
		fmt.Fprintln(e.out)
		return nil
	})
}

func idCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "id",
		Usage: "Compute or verify the message ID of a content envelope",
		Flags: []cli.Flag{
			inFlag(),
			cli.StringFlag{Name: "sender", Usage: "sender URI"},
			cli.StringFlag{Name: "room", Usage: "room URI"},
			cli.StringFlag{Name: "alg", Value: "sha-256", Usage: "hash algorithm name"},
			cli.StringFlag{Name: "verify", Usage: "hex message ID to check against"},
		},
		Action: func(c *cli.Context) error {
			m, err := e.loadContent(c)
			if err != nil {
				return err
			}
			sender, room, err := address(c, m)
			if err != nil {
				return err
			}

			if v := c.String("verify"); v != "" {
				want, err := content.ParseMessageID(v)
				if err != nil {
					return err
				}
				ok, err := want.Verify(e.registry, sender, room, m)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("message ID does not match")
				}
				fmt.Fprintln(e.out, "ok")
				return nil
			}

			alg, err := parseAlg(c.String("alg"))
			if err != nil {
				return err
			}
			id, err := e.registry.NewMessageID(alg, sender, room, m)
			if err != nil {
				return err
			}

			logger.Log.Debug("message id", zap.Stringer("alg", alg), zap.Stringer("id", id))
			fmt.Fprintln(e.out, id)
			return nil
		},
	}
}

func frankCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "frank",
		Usage: "Compute the franking tag of a content envelope",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			m, err := e.loadContent(c)
			if err != nil {
				return err
			}
			tag, err := m.FrankingTag()
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, tag)
			return nil
		},
	}
}

func reportCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "report",
		Usage: "Print a message status report",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			path, err := requireIn(c)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			r, err := report.Decode(data)
			if err != nil {
				return err
			}
			for _, s := range r.Statuses {
				fmt.Fprintf(e.out, "%s %s\n", s.MessageID, s.Status)
			}
			return nil
		},
	}
}

func derivedCommand(e *env) cli.Command {
	return cli.Command{
		Name:  "derived",
		Usage: "Print hub derived values",
		Flags: []cli.Flag{inFlag()},
		Action: func(c *cli.Context) error {
			path, err := requireIn(c)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			v, err := derived.Decode(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "message-id:  %s\n", v.MessageID)
			fmt.Fprintf(e.out, "accepted:    %s\n", v.HubAcceptedTimestamp)
			fmt.Fprintf(e.out, "group:       %s\n", v.MLSGroupID)
			fmt.Fprintf(e.out, "leaf:        %d\n", v.SenderLeafIndex)
			fmt.Fprintf(e.out, "client:      %s\n", v.SenderClientURL)
			fmt.Fprintf(e.out, "user:        %s\n", v.SenderUserURL)
			fmt.Fprintf(e.out, "room:        %s\n", v.RoomURL)
			return nil
		},
	}
}
