// Command bus1ctl is a small diagnostic CLI driving an in-process bus: it
// wires together a handful of fake.Peer instances and lets a caller create,
// destroy, send and inspect nodes, to exercise the core library without a
// real transport. Grounded on the CLI structure of the teacher's
// database/mpt/tool (urfave/cli/v2, one subcommand per verb).
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/opendz/bus1/handle"
	"github.com/opendz/bus1/internal/fake"
	"github.com/opendz/bus1/internal/fake/ldbpool"
	"github.com/opendz/bus1/peer"
	"github.com/opendz/bus1/queue"
	"github.com/opendz/bus1/quota"
	"github.com/opendz/bus1/transfer"
)

// bus is the process-wide set of named peers this tool operates on. A real
// deployment would resolve peers from a transport layer instead of a map.
type bus struct {
	peers  map[string]*fake.Peer
	queues map[string]*queue.Queue
	clock  *fake.Clock
	nextID peer.ID
	quota  *quota.Registry

	// dbDir, when non-empty, backs every peer's pool with an on-disk
	// ldbpool.Pool under dbDir/<peer> instead of the in-memory fake.Pool,
	// so payload slices survive the process restarting.
	dbDir string
}

// every peer this tool drives acts on behalf of the same diagnostic uid, so
// a single quota.User's budgets are shared across every send this process
// issues.
const diagnosticUID = 1

func newBus(dbDir string) *bus {
	return &bus{
		peers:  make(map[string]*fake.Peer),
		queues: make(map[string]*queue.Queue),
		clock:  fake.NewClock(),
		quota:  quota.NewRegistry(1<<20, 1<<16, 1<<12),
		dbDir:  dbDir,
	}
}

func (b *bus) peer(name string) (*fake.Peer, error) {
	p, ok := b.peers[name]
	if ok {
		return p, nil
	}

	var pool peer.Pool
	if b.dbDir != "" {
		ldb, err := ldbpool.Open(b.dbDir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("open ldbpool for %s: %w", name, err)
		}
		pool = ldb
	} else {
		pool = fake.NewPool()
	}

	b.nextID++
	p = fake.NewPeer(b.nextID, pool)
	b.peers[name] = p
	b.queues[name] = queue.New()
	return p, nil
}

func main() {
	var dbDir string
	b := newBus("")

	app := &cli.App{
		Name:  "bus1ctl",
		Usage: "inspect and drive an in-process bus1-style node/handle core",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db",
				Usage:       "persist peer payload slices under this directory via LevelDB instead of in-memory",
				Destination: &dbDir,
			},
		},
		// Before runs after flag parsing but before any command's Action,
		// so b.dbDir reflects --db by the time peer() first opens a pool.
		Before: func(c *cli.Context) error {
			b.dbDir = dbDir
			return nil
		},
		Commands: []*cli.Command{
			createCmd(b),
			destroyCmd(b),
			sendCmd(b),
			inspectCmd(b),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createCmd(b *bus) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "create a node and install its owner handle on a peer",
		ArgsUsage: "<peer>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("create: missing <peer>")
			}
			p, err := b.peer(name)
			if err != nil {
				return err
			}
			n := handle.NewNode()
			owner := n.Owner()

			p.Lock()
			_, _, err = handle.Install(owner, p)
			p.Unlock()
			if err != nil {
				return err
			}
			fmt.Printf("created node on %s, owner id=%d\n", name, owner.ID())
			return nil
		},
	}
}

func destroyCmd(b *bus) *cli.Command {
	return &cli.Command{
		Name:      "destroy",
		Usage:     "destroy the node owned by the given handle id",
		ArgsUsage: "<peer> <id>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("destroy: want <peer> <id>")
			}
			name := c.Args().Get(0)
			id, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
			if err != nil {
				return err
			}
			p, err := b.peer(name)
			if err != nil {
				return err
			}
			h, err := handle.FindByID(p, id)
			if err != nil {
				return err
			}
			if err := handle.Destroy(h, b.clock); err != nil {
				return err
			}
			fmt.Printf("destroyed node owned by %s/%d\n", name, id)
			return nil
		},
	}
}

func sendCmd(b *bus) *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "transfer one or more ids on <from> to one or more destinations",
		ArgsUsage: "<from> <to1>[,<to2>,...] <id1>[,<id2>,...] " +
			"(an id of \"new\" requests a freshly allocated node)",
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 3 {
				return fmt.Errorf("send: want <from> <to...> <id...>")
			}
			from, err := b.peer(c.Args().Get(0))
			if err != nil {
				return err
			}
			toNames := strings.Split(c.Args().Get(1), ",")
			rawIDs, err := parseRawIDs(strings.Split(c.Args().Get(2), ","))
			if err != nil {
				return err
			}

			tr := transfer.Init([]byte("bus1ctl-payload"))
			user := b.quota.Get(diagnosticUID)
			if err := tr.Instantiate(from, from.ID(), user, rawIDs); err != nil {
				_ = tr.Destroy(b.clock)
				return err
			}

			inflights := make([]*transfer.Inflight, len(toNames))
			for i, toName := range toNames {
				to, err := b.peer(toName)
				if err != nil {
					_ = tr.Destroy(b.clock)
					return err
				}
				inf := transfer.NewInflight(to, b.queues[toName])
				inf.Instantiate(tr)
				if _, err := inf.Install(b.clock.Next() | 1); err != nil {
					_ = tr.Destroy(b.clock)
					return err
				}
				inflights[i] = inf
			}

			if err := tr.Destroy(b.clock); err != nil {
				return err
			}

			seq := b.clock.Next()
			for i, toName := range toNames {
				ids, _ := inflights[i].Commit(seq)
				fmt.Printf("delivered to %s: %s\n", toName, formatIDs(ids))
			}
			return nil
		},
	}
}

// parseRawIDs turns the send command's comma-separated id list into the raw
// ids Transfer.Instantiate expects, mapping the literal "new" to an
// allocate request (spec.md §6's ALLOCATE flag).
func parseRawIDs(raw []string) ([]uint64, error) {
	ids := make([]uint64, len(raw))
	for i, s := range raw {
		if s == "new" {
			ids[i] = handle.ManagedFlag | handle.AllocateFlag
			continue
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("send: invalid id %q: %w", s, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func formatIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		if id == handle.InvalidID {
			parts[i] = "INVALID"
			continue
		}
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

func inspectCmd(b *bus) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the queue depth and front entry for a peer",
		ArgsUsage: "<peer>",
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("inspect: missing <peer>")
			}
			q := b.queues[name]
			if q == nil {
				fmt.Printf("%s: unknown\n", name)
				return nil
			}
			front := q.Peek()
			fmt.Printf("%s: depth=%d front-seq=%v\n", name, q.Len(), frontSeq(front))
			return nil
		},
	}
}

func frontSeq(e *queue.Entry) any {
	if e == nil {
		return nil
	}
	return e.Seq
}
