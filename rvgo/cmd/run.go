package cmd

import (
	"debug/elf"
	"fmt"
	"golang.org/x/exp/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/rvuser/rvemu/rvgo/core"
	rvelf "github.com/rvuser/rvemu/rvgo/elf"
	"github.com/rvuser/rvemu/rvgo/disasm"
	"github.com/rvuser/rvemu/rvgo/memory"
	"github.com/rvuser/rvemu/rvgo/riscv"
)

const defaultBatch = 1 << 16

// Run is the "run" command's action: load the ELF named by the single
// required positional argument, construct a hart per the selected ISA
// subset, and step it to completion, forwarding the guest's exit code as
// this process's own exit code (spec.md §6).
func Run(ctx *cli.Context) error {
	if ctx.Bool(HelpFlag.Name) {
		cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return cli.Exit("", 9)
	}

	if ctx.Bool(CPUProfileFlag.Name) {
		stop := profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile)
		defer stop.Stop()
	}

	path := ctx.Args().First()
	if path == "" {
		return cli.Exit("missing required ELF path argument", 9)
	}

	logger := Logger(os.Stderr, slog.LevelInfo)

	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open %q: %v", path, err), 9)
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to parse ELF %q: %v", path, err), 9)
	}

	xlen := riscv.XLen64
	if ef.Class == elf.ELFCLASS32 {
		xlen = riscv.XLen32
	}
	isa, err := riscv.ParseISA(ctx.String(ISAFlag.Name), xlen)
	if err != nil {
		return cli.Exit(err.Error(), 9)
	}

	mem := memory.New()
	defer mem.Close()
	if ctx.Bool(EmulatorDebugFlag.Name) {
		mem.Trace = func(format string, args ...any) { logger.Info(fmt.Sprintf(format, args...)) }
	}

	argv := ctx.Args().Slice()
	loaded, err := rvelf.Load(ef, mem, argv, os.Environ())
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load %q into guest memory: %v", path, err), 1)
	}

	if ctx.Bool(MemoryDebugFlag.Name) {
		printMemoryDebug(logger, mem, loaded)
	}

	hart := core.NewHart(isa, mem)
	hart.PC = loaded.Entry
	hart.HeapBegin, hart.HeapEnd = loaded.HeapBegin, loaded.HeapEnd
	hart.SetIreg(riscv.RegSP, loaded.StackPtr)

	stepper := &core.Stepper{
		Hart:     hart,
		Proxy:    &core.Proxy{Stdout: os.Stdout, Stderr: os.Stderr},
		NoPseudo: ctx.Bool(NoPseudoFlag.Name),
	}
	if ctx.Bool(LogRegistersFlag.Name) {
		stepper.LogRegisters = func(h *core.Hart) { logRegisters(logger, h) }
	}
	if ctx.Bool(LogInstructionsFlag.Name) {
		noPseudo := ctx.Bool(NoPseudoFlag.Name)
		stepper.LogInstruction = func(pc, raw uint64, length int, p core.Pseudo, hasPseudo bool, d *core.DecodedInst) {
			logger.Info(fmt.Sprintf("core 0: 0x%x (0x%0*x) %s", pc, length*2, raw, disasm.Format(d, noPseudo)))
		}
	}

	maxInstructions := ctx.Uint64(MaxInstructionsFlag.Name)
	retired := uint64(0)
	for {
		batch := defaultBatch
		if maxInstructions != 0 {
			remaining := maxInstructions - retired
			if remaining == 0 {
				return cli.Exit("reached --max-instructions without guest exit", 1)
			}
			if remaining < uint64(batch) {
				batch = int(remaining)
			}
		}

		res, err := stepper.Run(batch)
		if err != nil {
			if illegal, ok := err.(*core.IllegalInstructionError); ok {
				core.LogDiagnostic(os.Stderr, illegal)
				return cli.Exit("illegal instruction", 1)
			}
			return cli.Exit(err.Error(), 1)
		}
		retired += uint64(batch)

		if res.Illegal {
			return cli.Exit("illegal instruction", 1)
		}
		if res.Exited {
			if err := mem.Close(); err != nil {
				logger.Warn("error releasing guest memory", "err", err)
			}
			// An empty message lets urfave/cli's default exit handling set
			// the process exit code without printing anything extra — the
			// guest's own stdout/stderr output is the only thing that
			// should appear (spec.md §9's redesign: exit is data, not a
			// direct os.Exit from inside the core).
			return cli.Exit("", int(res.ExitCode))
		}
	}
}

func printMemoryDebug(logger logIface, mem *memory.Memory, loaded rvelf.LoadResult) {
	for _, seg := range mem.Segments() {
		logger.Info(fmt.Sprintf("segment base=0x%x length=0x%x", seg.Base, seg.Length))
	}
	logger.Info(fmt.Sprintf("heap begin=0x%x end=0x%x", loaded.HeapBegin, loaded.HeapEnd))
	logger.Info(fmt.Sprintf("stack top=0x%x sp=0x%x", loaded.StackTop, loaded.StackPtr))
}

func logRegisters(logger logIface, h *core.Hart) {
	logger.Info(fmt.Sprintf("pc=0x%x x1=0x%x x2=0x%x x10=0x%x", h.PC, h.Ireg[1], h.Ireg[2], h.Ireg[10]))
}

// logIface is the tiny slice of go-ethereum's log.Logger this file relies
// on, named so printMemoryDebug/logRegisters don't have to import the
// concrete logger type twice.
type logIface interface {
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
}

var RunCommand = &cli.Command{
	Name:   "run",
	Usage:  "run a statically linked RISC-V ELF to completion",
	Flags:  RunFlags,
	Action: Run,
}
