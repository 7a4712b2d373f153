package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/pipeline"
)

var _ = Describe("Stages", func() {
	var (
		config *latency.TimingConfig
		rec    *recorder
		pipe   *pipeline.Pipeline
	)

	BeforeEach(func() {
		config = latency.DefaultTimingConfig()
		rec = newRecorder()
	})

	build := func() {
		pipe = newTestPipeline(config, pipeline.WithHook(rec))
	}

	Describe("Dispatch", func() {
		It("should stall when the pool is full", func() {
			config.DispatchWidth = 4
			build()

			Expect(pipe.TryDispatch(ialu(1, 0, 0))).To(BeTrue())
			Expect(pipe.Class(insts.FUIALU).Full()).To(BeTrue())
			Expect(pipe.TryDispatch(ialu(2, 0, 0))).To(BeFalse())

			pipe.Tick()
			Expect(pipe.TryDispatch(ialu(2, 0, 0))).To(BeFalse())

			pipe.Tick()
			Expect(pipe.TryDispatch(ialu(2, 0, 0))).To(BeTrue())

			stats := pipe.Stats()
			Expect(stats.DispatchStalls).To(Equal(uint64(2)))
			Expect(stats.FU[insts.FUIALU].Stalls).To(Equal(uint64(2)))
			Expect(stats.Dispatched).To(Equal(uint64(2)))
		})

		It("should keep program order within a pool", func() {
			config.IALU.NumStations = 4
			config.DispatchWidth = 4
			build()

			for r := insts.Reg(1); r <= 3; r++ {
				Expect(pipe.TryDispatch(ialu(r, 0, 0))).To(BeTrue())
			}

			var dsts []insts.Reg
			for _, tag := range pipe.Class(insts.FUIALU).Pool() {
				st, ok := pipe.Station(tag)
				Expect(ok).To(BeTrue())
				dsts = append(dsts, st.Uop.Dst)
			}
			Expect(dsts).To(Equal([]insts.Reg{1, 2, 3}))
		})

		It("should read sources before renaming the destination", func() {
			config.IALU.NumStations = 2
			config.DispatchWidth = 2
			build()

			pipe.TryDispatch(ialu(1, 0, 0))
			pipe.TryDispatch(ialu(1, 1, 0))

			pool := pipe.Class(insts.FUIALU).Pool()
			second, _ := pipe.Station(pool[1])
			Expect(second.Src[0]).To(Equal(pool[0]))
			Expect(pipe.RegisterStatus().Lookup(1)).To(Equal(pool[1]))
		})

		It("should not rename r0", func() {
			build()

			pipe.TryDispatch(ialu(0, 0, 0))
			Expect(pipe.RegisterStatus().Lookup(0).IsZero()).To(BeTrue())
			Expect(pipe.RegisterStatus().Tagged()).To(Equal(0))
		})

		It("should not let a store rename its register", func() {
			config.IALU.NumStations = 2
			config.Mem.NumStations = 4
			config.DispatchWidth = 8
			build()

			pipe.TryDispatch(ialu(1, 0, 0))
			pipe.TryDispatch(insts.Uop{Op: insts.OpSTORE, Dst: 1, Src1: 1, Src2: 2})
			pipe.TryDispatch(insts.Uop{Op: insts.OpSTORE, Dst: 5, Src1: 6})
			pipe.TryDispatch(insts.Uop{Op: insts.OpLOAD, Dst: 3, Src1: 1})

			writer := pipe.Class(insts.FUIALU).Pool()[0]
			mem := pipe.Class(insts.FUMem).Pool()
			Expect(mem).To(HaveLen(3))

			store, _ := pipe.Station(mem[0])
			load, _ := pipe.Station(mem[2])
			Expect(store.Src[0]).To(Equal(writer))
			Expect(load.Src[0]).To(Equal(writer))

			regs := pipe.RegisterStatus()
			Expect(regs.Lookup(1)).To(Equal(writer))
			Expect(regs.Lookup(5).IsZero()).To(BeTrue())
			Expect(regs.Lookup(3)).To(Equal(mem[2]))
		})

		It("should panic on a register outside the register space", func() {
			config.NumRegisters = 16
			build()

			Expect(func() { pipe.TryDispatch(ialu(16, 0, 0)) }).To(Panic())
			Expect(func() {
				pipe.TryDispatch(insts.Uop{Op: insts.OpFALU, Dst: 1, Src3: 99})
			}).To(Panic())
			Expect(pipe.Idle()).To(BeTrue())
		})
	})

	Describe("Execute", func() {
		DescribeTable("dependency chains run back to back",
			func(lat uint32) {
				config.IALU.Latency = lat
				config.IALU.NumStations = 4
				build()

				feed(pipe, ialu(1, 0, 0))
				feed(pipe, ialu(2, 1, 0))
				feed(pipe, ialu(3, 2, 0))
				drain(pipe)

				l := uint64(lat)
				Expect(rec.cycles(pipeline.HookPosIssue)).To(Equal(
					[]uint64{1, 1 + l, 1 + 2*l}))
				Expect(rec.cycles(pipeline.HookPosRetire)).To(Equal(
					[]uint64{1 + l, 1 + 2*l, 1 + 3*l}))
			},
			Entry("latency 1", uint32(1)),
			Entry("latency 2", uint32(2)),
			Entry("latency 5", uint32(5)),
		)

		It("should issue independent operations in the same cycle", func() {
			config.IALU.NumUnits = 4
			config.IALU.NumStations = 4
			config.DispatchWidth = 4
			config.CDBWidth = 4
			build()

			for r := insts.Reg(1); r <= 4; r++ {
				feed(pipe, ialu(r, 0, 0))
			}
			Expect(pipe.Cycle()).To(Equal(uint64(1)))

			var units []int
			for _, issue := range rec.records[pipeline.HookPosIssue] {
				Expect(issue.Cycle).To(Equal(uint64(1)))
				units = append(units, issue.Unit)
			}
			Expect(units).To(Equal([]int{0, 1, 2, 3}))

			pipe.Tick()
			Expect(rec.cycles(pipeline.HookPosRetire)).To(Equal(
				[]uint64{2, 2, 2, 2}))
			Expect(pipe.Idle()).To(BeTrue())
		})

		It("should issue a younger ready operation past a waiting one", func() {
			config.IALU.NumStations = 4
			config.DispatchWidth = 4
			build()

			pipe.TryDispatch(insts.Uop{Op: insts.OpIMUL, Dst: 1})
			pipe.TryDispatch(ialu(2, 1, 0))
			pipe.TryDispatch(ialu(3, 0, 0))
			drain(pipe)

			Expect(rec.cycleOf(pipeline.HookPosIssue, 3)).To(Equal(uint64(1)))
			Expect(rec.cycleOf(pipeline.HookPosIssue, 2)).To(Equal(uint64(5)))
		})

		It("should issue memory operations strictly in order", func() {
			config.IALU.Latency = 5
			config.Mem.NumUnits = 2
			config.Mem.NumStations = 4
			config.DispatchWidth = 4
			config.CDBWidth = 4
			build()

			pipe.TryDispatch(ialu(1, 0, 0))
			pipe.TryDispatch(insts.Uop{Op: insts.OpLOAD, Dst: 2, Src1: 1})
			pipe.TryDispatch(insts.Uop{Op: insts.OpLOAD, Dst: 3})

			for i := 0; i < 5; i++ {
				pipe.Tick()
			}
			for _, tag := range pipe.Class(insts.FUMem).Pool() {
				st, _ := pipe.Station(tag)
				Expect(st.Issued).To(BeFalse())
			}

			pipe.Tick()
			Expect(rec.cycleOf(pipeline.HookPosIssue, 2)).To(Equal(uint64(6)))
			Expect(rec.cycleOf(pipeline.HookPosIssue, 3)).To(Equal(uint64(6)))
		})

		It("should skip issued memory operations at the head", func() {
			config.Mem.Latency = 3
			config.Mem.NumUnits = 2
			config.Mem.NumStations = 4
			config.DispatchWidth = 4
			build()

			pipe.TryDispatch(insts.Uop{Op: insts.OpLOAD, Dst: 1})
			pipe.Tick()
			pipe.TryDispatch(insts.Uop{Op: insts.OpSTORE, Src1: 2})
			pipe.Tick()

			Expect(rec.cycleOf(pipeline.HookPosIssue, 1)).To(Equal(uint64(1)))
			Expect(rec.records[pipeline.HookPosIssue]).To(HaveLen(2))
			Expect(rec.records[pipeline.HookPosIssue][1].Cycle).To(Equal(uint64(2)))
		})

		DescribeTable("initiation interval and pipe depth limit a unit",
			func(depth uint32, expected []uint64) {
				config.IDIV.PipeDepth = depth
				config.IDIV.InitiationInterval = 4
				config.IDIV.Latency = 8
				config.IDIV.NumStations = 4
				config.DispatchWidth = 4
				build()

				for r := insts.Reg(1); r <= 3; r++ {
					pipe.TryDispatch(insts.Uop{Op: insts.OpIDIV, Dst: r})
				}
				drain(pipe)

				Expect(rec.cycles(pipeline.HookPosIssue)).To(Equal(expected))
			},
			Entry("depth 1", uint32(1), []uint64{1, 9, 17}),
			Entry("depth 2", uint32(2), []uint64{1, 5, 9}),
			Entry("depth 3", uint32(3), []uint64{1, 5, 9}),
		)

		It("should add the access latency to loads only", func() {
			config.Mem.Latency = 2
			config.Mem.NumStations = 2
			config.LoadAccessLatency = 3
			config.DispatchWidth = 2
			build()

			pipe.TryDispatch(insts.Uop{Op: insts.OpLOAD, Dst: 1})
			pipe.TryDispatch(insts.Uop{Op: insts.OpSTORE, Src1: 2})
			drain(pipe)

			issues := rec.records[pipeline.HookPosIssue]
			Expect(issues).To(HaveLen(2))
			Expect(issues[0].DueCycle - issues[0].Cycle).To(Equal(uint64(5)))
			Expect(issues[1].DueCycle - issues[1].Cycle).To(Equal(uint64(2)))
		})
	})

	Describe("Write-Result", func() {
		It("should retire at most one result per bus", func() {
			config.IALU.NumUnits = 4
			config.IALU.NumStations = 4
			config.DispatchWidth = 4
			config.CDBWidth = 2
			build()

			for r := insts.Reg(1); r <= 4; r++ {
				pipe.TryDispatch(ialu(r, 0, 0))
			}
			drain(pipe)

			var dsts []insts.Reg
			for _, r := range rec.records[pipeline.HookPosRetire] {
				dsts = append(dsts, r.Uop.Dst)
			}
			Expect(rec.cycles(pipeline.HookPosRetire)).To(Equal(
				[]uint64{2, 2, 3, 3}))
			Expect(dsts).To(Equal([]insts.Reg{1, 2, 3, 4}))
			Expect(pipe.Stats().MaxPendingEvents).To(Equal(4))
		})

		It("should keep a newer rename when an older writer retires", func() {
			config.IMUL.Latency = 4
			config.DispatchWidth = 2
			build()

			pipe.TryDispatch(ialu(1, 0, 0))
			pipe.TryDispatch(insts.Uop{Op: insts.OpIMUL, Dst: 1})
			newer := pipe.Class(insts.FUIMUL).Pool()[0]

			pipe.Tick()
			pipe.Tick()
			Expect(rec.cycleOf(pipeline.HookPosRetire, 1)).To(Equal(uint64(2)))
			Expect(pipe.RegisterStatus().Lookup(1)).To(Equal(newer))

			drain(pipe)
			Expect(pipe.RegisterStatus().Lookup(1).IsZero()).To(BeTrue())
		})

		It("should wake every consumer of a result", func() {
			config.FALU.NumStations = 3
			config.FALU.NumUnits = 3
			config.DispatchWidth = 4
			config.CDBWidth = 1
			build()

			pipe.TryDispatch(insts.Uop{Op: insts.OpFDIV, Dst: 8})
			pipe.TryDispatch(insts.Uop{Op: insts.OpFALU, Dst: 9, Src1: 8, Src2: 8})
			pipe.TryDispatch(insts.Uop{Op: insts.OpFALU, Dst: 10, Src2: 8})
			pipe.TryDispatch(insts.Uop{Op: insts.OpFALU, Dst: 11, Src1: 8, Src3: 8})
			drain(pipe)

			// FDIV issues at 1 and retires at 11; all three consumers start there.
			for r := insts.Reg(9); r <= 11; r++ {
				Expect(rec.cycleOf(pipeline.HookPosIssue, r)).To(Equal(uint64(11)))
			}
		})

		It("should leave no reference to a retired station", func() {
			config.IALU.NumStations = 2
			config.IMUL.NumStations = 2
			config.Mem.NumStations = 2
			config.DispatchWidth = 2
			build()

			uops := []insts.Uop{
				{Op: insts.OpLOAD, Dst: 1, Src1: 2},
				{Op: insts.OpIMUL, Dst: 3, Src1: 1, Src2: 1},
				ialu(1, 3, 1),
				{Op: insts.OpSTORE, Src1: 1, Src2: 3},
				{Op: insts.OpIMUL, Dst: 3, Src1: 3},
				ialu(4, 3, 4),
			}
			for _, u := range uops {
				feed(pipe, u)
			}
			drain(pipe)

			Expect(pipe.Stats().Retired).To(Equal(uint64(len(uops))))
			Expect(pipe.InFlight()).To(Equal(0))
			Expect(pipe.RegisterStatus().Tagged()).To(Equal(0))
			Expect(pipe.CheckInvariants()).To(Succeed())

			for _, d := range rec.records[pipeline.HookPosDispatch] {
				_, live := pipe.Station(d.Tag)
				Expect(live).To(BeFalse())
			}
		})

		It("should not confuse a reused slot with its previous station", func() {
			build()

			feed(pipe, ialu(1, 0, 0))
			old := rec.records[pipeline.HookPosDispatch][0].Tag
			drain(pipe)

			feed(pipe, ialu(2, 0, 0))
			reused := rec.records[pipeline.HookPosDispatch][1].Tag

			Expect(reused).NotTo(Equal(old))
			_, live := pipe.Station(old)
			Expect(live).To(BeFalse())
			_, live = pipe.Station(reused)
			Expect(live).To(BeTrue())
		})
	})
})
