// Package wazero serves the engine's boundary contract from a wasm32 build of
// the engine running in-process under the wazero runtime.
//
// Addresses handed to the host are offsets into the guest's linear memory.
// Inputs (program text, error slots, copy buffers) are placed in guest memory
// through the guest's "allocate" export and returned with "deallocate".
//
// # Guest ABI
//
// The module must export memory and these functions, with wasm32 pointers
// passed as i32:
//
//	book_parse(code, err_out) -> book
//	free_book(book)
//	book_evaluate(book, runtime, enable_mem_dump, err_out) -> record
//	free_evaluation_result(record)
//	book_serialize(book, err_out) -> vec
//	vec_get_length(vec) -> i64
//	vec_copy(vec, dst, size i64)
//	free_vec(vec)
//	free_cstring(s)
//	allocate(size) -> ptr
//	deallocate(ptr, size)
//
// The evaluation record is 28 bytes, little-endian: iterations u64 at 0,
// seconds f64 at 8, result u32 at 16, mem_dump u32 at 20 and the deallocator's
// table index u32 at 24.
//
// The host module "hvm_host" exports log_message(packed i64), where the upper
// 32 bits are a pointer and the lower 32 bits a length of a JSON log line.
//
// # Basic Usage
//
//	wasmBytes, err := os.ReadFile("hvm.wasm")
//	if err != nil {
//	    return err
//	}
//	b, err := wazero.Load(ctx, wasmBytes, wazero.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer b.Close(ctx)
//
//	engine := hvm.New(b)
package wazero
