package emu

// createTestROMSet creates a ROM set where every byte of a program bank
// holds 0x10*(bank+1) plus the offset's top three bits, so both the bank
// and the offset of a read can be verified. The vector ROM holds 0xEE.
func createTestROMSet() ROMSet {
	var set ROMSet
	for b := range set.Program {
		bank := make([]byte, romBankSize)
		for i := range bank {
			bank[i] = byte(0x10*(b+1)) | byte(i>>8)
		}
		set.Program[b] = bank
	}
	set.Vector = make([]byte, vectorROMSize)
	for i := range set.Vector {
		set.Vector[i] = 0xEE
	}
	return set
}

// createTestBus creates a bus over blank memory with the default config.
func createTestBus(cfg Config) *Bus {
	mem := NewMemory(createTestROMSet())
	return NewBus(mem, NewPorts(DefaultDIP().Byte()), cfg, nil)
}

// runProgram loads p into vector RAM at word 0 and strobes GO on page 0.
func runProgram(b *Bus, p *VectorProgram) (*FrameBuffer, RunStats) {
	p.LoadInto(b, 0)
	b.Write(regGo, 0)
	fb, _ := b.Frames().Latest()
	return fb, b.LastRun()
}

// recordingDriver remembers every display call in order.
type recordingDriver struct {
	calls  []string
	points []Point
	z      []uint8
}

func (r *recordingDriver) SetPosition(x, y uint16) {
	r.calls = append(r.calls, "pos")
	r.points = append(r.points, Point{X: x, Y: y})
}

func (r *recordingDriver) SetIntensity(z uint8) {
	r.calls = append(r.calls, "z")
	r.z = append(r.z, z)
}

type framedDriver struct {
	recordingDriver
}

func (f *framedDriver) BeginFrame() { f.calls = append(f.calls, "begin") }
func (f *framedDriver) EndFrame()   { f.calls = append(f.calls, "end") }

// recordingObserver counts events and keeps the arguments of the last one.
type recordingObserver struct {
	NopObserver
	goStrobes   []uint16
	runs        []RunStats
	throttles   int
	writes      []uint16
	divergences []int
}

func (r *recordingObserver) GoStrobe(pc uint16)            { r.goStrobes = append(r.goStrobes, pc) }
func (r *recordingObserver) RunComplete(s RunStats)        { r.runs = append(r.runs, s) }
func (r *recordingObserver) ThrottleReset(uint16, uint8)   { r.throttles++ }
func (r *recordingObserver) OutputWrite(a uint16, _ uint8) { r.writes = append(r.writes, a) }
func (r *recordingObserver) Divergence(_ uint16, i int)    { r.divergences = append(r.divergences, i) }
