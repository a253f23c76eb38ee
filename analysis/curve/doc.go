// Package curve holds magnitude-vs-frequency curves, their JSON file
// format and the comparison of a measured curve against a target.
//
// In memory, magnitudes are always linear amplitudes. Files store them in
// dB and declare it with the "magnitude_scale" metadata field; files
// without the field are read as linear.
//
// # File format
//
//	{
//	  "frequencies": [20, 20.5, ...],
//	  "magnitudes": [-3.1, -2.9, ...],
//	  "metadata": {"magnitude_scale": "dB", "points_per_frequency": 1, ...}
//	}
//
// Metadata fields the package does not know are kept as they are.
package curve
