package memcheck

// Template is the scaffold a merged report is built from. It reproduces the
// fixed envelope of a single valgrind run: preamble, pid, argument blocks,
// and the RUNNING/FINISHED status pair, with a lone <error /> marking the
// splice point for collected records. Downstream consumers of merged reports
// only inspect the error elements, so the surrounding values stay static.
const Template = `<?xml version="1.0"?>

<valgrindoutput>

<protocolversion>4</protocolversion>
<protocoltool>memcheck</protocoltool>

<preamble>
  <line>Memcheck, a memory error detector</line>
  <line>Copyright (C) 2002-2015, and GNU GPL'd, by Julian Seward et al.</line>
  <line>Using Valgrind-3.12.0 and LibVEX; rerun with -h for copyright info</line>
  <line>Command: vce --gtest_filter=-*.CheckDebugRoutines</line>
</preamble>

<pid>12345</pid>
<ppid>67890</ppid>
<tool>memcheck</tool>

<args>
  <vargv>
    <exe>/ap/local/potatools/valgrind/3.12.0/bin/valgrind</exe>
    <arg>--suppressions=.config/valgrind/valgrind.suppress</arg>
    <arg>--leak-check=full</arg>
    <arg>--child-silent-after-fork=yes</arg>
    <arg>--xml=yes</arg>
    <arg>--xml-file=memcheck.xml</arg>
  </vargv>
  <argv>
    <exe>vce</exe>
    <arg>--gtest_filter=-*.CheckDebugRoutines</arg>
  </argv>
</args>

<status>
  <state>RUNNING</state>
  <time>00:00:00:00.000 </time>
</status>


<status>
  <state>FINISHED</state>
  <time>00:00:00:00.000 </time>
</status>

<error />

<errorcounts>
</errorcounts>

<suppcounts>
  <pair>
    <count>166</count>
    <name>possibly_lost_in_string_alloc</name>
  </pair>
</suppcounts>

</valgrindoutput>
`
