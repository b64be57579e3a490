/*
Package discovery decides which storage backends the router activates.

Selection uses either an explicit override (only=<id> in the connection
string) or live probing: every loaded kernel module is matched against the
Catalog rules, in rule order, and duplicates collapse.

# Ambiguous signals

Some controllers are claimed by more than one backend. smartpqi devices can
be driven through arcconf or through ssacli. Such rules carry an Arbitration:
an ordered candidate list where the first candidate with an installed tool
wins, plus a fallback used when no tool is found. The fallback is still
activated so that its own initialization reports which tool is missing.

Adding another competitor is a data change:

	Arbitration{
		Candidates: []Candidate{
			{Backend: backend.Arcconf, Tools: []string{"arcconf"}},
			{Backend: backend.HPSA, Tools: []string{"ssacli", "hpssacli"}},
		},
		Fallback: backend.Arcconf,
	}

# Sub-parameters

Connection string parameters prefixed with "<backend>_" are stripped of the
prefix and forwarded to that backend's own target string:

	local://?megaraid_tool=/opt/storcli  →  megaraid://?tool=/opt/storcli
*/
package discovery
