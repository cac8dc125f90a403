// Package loader resolves a model identifier into ready-to-use handles.
//
// Load fetches the artifact bundle (config, tokenizer files, weights) of a
// model identifier through the hub cache and returns the tokenizer and model
// handles together, so both originate from the same snapshot.
//
// The package also reads safetensors weight files for artifact inspection:
// listing the tensor directory, pulling small tensors as float32, and
// verifying that the classifier head matches the declared label set. The
// weights used for inference are the exported model.onnx; safetensors is
// inspect-only.
package loader
