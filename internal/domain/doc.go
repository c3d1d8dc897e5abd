// Package domain converts Argo float-profile files into normalized documents.
//
// # Data Source
//
// Argo floats surface after each dive and report one vertical profile per cycle. The
// data assembly centres publish one file per float cycle in a self-describing binary
// array format. Only the first profile (N_PROF index 0) of a file is converted.
//
// # File Conventions
//
// Dimensions:
//
//	N_PROF     profiles in the file
//	N_PARAM    parameters measured in each profile
//	N_LEVELS   vertical levels per profile
//	N_CALIB    calibration records (reported, not converted)
//	N_HISTORY  history records (reported, not converted)
//
// Text is stored as fixed-width character arrays padded with NUL bytes or spaces:
//
//	DATA_TYPE            STRING16
//	FORMAT_VERSION       STRING4
//	REFERENCE_DATE_TIME  DATE_TIME (14, "YYYYMMDDHHMISS")
//	PLATFORM_NUMBER      N_PROF x STRING8
//	STATION_PARAMETERS   N_PROF x N_PARAM x STRING16
//	<PARAM>_QC           N_PROF x N_LEVELS, one flag character per level
//
// Padding is stripped on decode. A field that is missing from a file is replaced with a
// sentinel (see [FillInt], [FillFloat], empty string) and reported as degraded; the
// file is still converted.
//
// # Processing Mode
//
// DATA_MODE "R" marks real-time data: measurements are read from the variable named
// after the parameter (e.g. TEMP). Any other mode ("A" adjusted, "D" delayed) reads
// the scientifically corrected TEMP_ADJUSTED and its TEMP_ADJUSTED_QC flags. A record
// never mixes the two.
//
// # Documents
//
// Each file yields one [ProfileRecord] ("<platform>_<cycle>") that references one
// [MetaRecord] ("<platform>_m<n>"). Metadata is deduplicated across a batch by
// comparing every descriptive field; see [MetaCache].
package domain
