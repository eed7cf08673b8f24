// Package wasmtest hand-assembles minimal core wasm modules for tests.
// Building fixtures inline keeps the repository free of binary testdata
// while still exercising real wazero execution paths: proc_exit codes,
// traps, infinite loops, and stdout via fd_write.
//
// All sections stay under 128 bytes so every LEB128 length fits in a
// single byte; the helpers panic otherwise.
package wasmtest

const wasiPreview1 = "wasi_snapshot_preview1"

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func sec(id byte, parts ...[]byte) []byte {
	var content []byte
	for _, p := range parts {
		content = append(content, p...)
	}
	if len(content) >= 128 {
		panic("fixture section too large for single-byte LEB128")
	}
	return append([]byte{id, byte(len(content))}, content...)
}

func vec(count int, parts ...[]byte) []byte {
	out := []byte{byte(count)}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func str(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func funcBody(body []byte) []byte {
	return append([]byte{byte(len(body))}, body...)
}

// startModule builds a module with a single ()->() function exported as
// _start, with the given body (locals byte included).
func startModule(body []byte) []byte {
	m := append([]byte{}, header...)
	m = append(m, sec(1, vec(1, []byte{0x60, 0x00, 0x00}))...)
	m = append(m, sec(3, vec(1, []byte{0x00}))...)
	m = append(m, sec(7, vec(1, str("_start"), []byte{0x00, 0x00}))...)
	m = append(m, sec(10, vec(1, funcBody(body)))...)
	return m
}

// Noop runs _start to completion without calling proc_exit.
func Noop() []byte {
	return startModule([]byte{0x00, 0x0b})
}

// Trap traps with `unreachable` as soon as _start runs.
func Trap() []byte {
	return startModule([]byte{0x00, 0x00, 0x0b})
}

// Loop spins forever; only a closed context stops it.
func Loop() []byte {
	return startModule([]byte{0x00, 0x03, 0x40, 0x0c, 0x00, 0x0b, 0x0b})
}

// Exit calls proc_exit(code) from _start.
func Exit(code byte) []byte {
	if code >= 64 {
		panic("code must fit a single signed LEB128 byte")
	}
	m := append([]byte{}, header...)
	m = append(m, sec(1, vec(2,
		[]byte{0x60, 0x01, 0x7f, 0x00}, // (i32) -> ()
		[]byte{0x60, 0x00, 0x00},       // () -> ()
	))...)
	m = append(m, sec(2, vec(1, str(wasiPreview1), str("proc_exit"), []byte{0x00, 0x00}))...)
	m = append(m, sec(3, vec(1, []byte{0x01}))...)
	m = append(m, sec(7, vec(1, str("_start"), []byte{0x00, 0x01}))...)
	m = append(m, sec(10, vec(1, funcBody([]byte{
		0x00,       // no locals
		0x41, code, // i32.const code
		0x10, 0x00, // call proc_exit
		0x0b,
	})))...)
	return m
}

// Print writes payload to stdout with fd_write, then returns normally.
// The payload and a prebuilt iovec live in data segments.
func Print(payload string) []byte {
	if len(payload) >= 32 {
		panic("payload too large for fixture layout")
	}
	const iovecAt, nwrittenAt = 32, 40

	m := append([]byte{}, header...)
	m = append(m, sec(1, vec(2,
		[]byte{0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f}, // fd_write
		[]byte{0x60, 0x00, 0x00},                               // _start
	))...)
	m = append(m, sec(2, vec(1, str(wasiPreview1), str("fd_write"), []byte{0x00, 0x00}))...)
	m = append(m, sec(3, vec(1, []byte{0x01}))...)
	m = append(m, sec(5, vec(1, []byte{0x00, 0x01}))...) // one memory page
	m = append(m, sec(7, vec(2,
		str("_start"), []byte{0x00, 0x01},
		str("memory"), []byte{0x02, 0x00},
	))...)
	m = append(m, sec(10, vec(1, funcBody([]byte{
		0x00,             // no locals
		0x41, 0x01,       // i32.const 1 (stdout)
		0x41, iovecAt,    // i32.const iovec ptr
		0x41, 0x01,       // i32.const 1 (iovec count)
		0x41, nwrittenAt, // i32.const nwritten ptr
		0x10, 0x00, // call fd_write
		0x1a, // drop errno
		0x0b,
	})))...)
	m = append(m, sec(11, vec(2,
		// payload at offset 0
		append([]byte{0x00, 0x41, 0x00, 0x0b}, str(payload)...),
		// iovec {ptr: 0, len: len(payload)} at iovecAt
		[]byte{0x00, 0x41, iovecAt, 0x0b,
			0x08,
			0x00, 0x00, 0x00, 0x00,
			byte(len(payload)), 0x00, 0x00, 0x00,
		},
	))...)
	return m
}
